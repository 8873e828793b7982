package model

import "github.com/ethereum/go-ethereum/common"

// PoolIdentity is a discovered (token, fee tier) pool. Produced once by the
// resolver and never mutated afterwards.
type PoolIdentity struct {
	Token common.Address `json:"token"`
	Quote common.Address `json:"quote"`
	Fee   uint32         `json:"fee"`
	Pool  common.Address `json:"pool"`
}

package curve

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const curveABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "creator", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "name", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "symbol", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "tokenURI", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "virtualNative", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "virtualToken", "type": "uint256"}
    ],
    "name": "Create",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "trader", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveNative", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveToken", "type": "uint256"}
    ],
    "name": "Buy",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "trader", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveNative", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveToken", "type": "uint256"}
    ],
    "name": "Sell",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "reserveNative", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveToken", "type": "uint256"}
    ],
    "name": "Sync",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"}
    ],
    "name": "Lock",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "pool", "type": "address"}
    ],
    "name": "Listed",
    "type": "event"
  }
]`

var (
	curveABI     abi.ABI
	curveABIOnce sync.Once
	curveABIErr  error
)

// CurveABI returns the parsed bonding-curve contract ABI.
func CurveABI() (abi.ABI, error) {
	curveABIOnce.Do(func() {
		curveABI, curveABIErr = abi.JSON(strings.NewReader(curveABIJSON))
	})
	return curveABI, curveABIErr
}

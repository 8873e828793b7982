package model

import (
	"fmt"
	"strings"
)

// EventType classifies decoded events for filtering.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventCreate
	EventBuy
	EventSell
	EventSync
	EventLock
	EventListed
	EventSwap
)

// CurveEventTypes lists the bonding-curve event types in signature order.
func CurveEventTypes() []EventType {
	return []EventType{EventCreate, EventBuy, EventSell, EventSync, EventLock, EventListed}
}

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "Create"
	case EventBuy:
		return "Buy"
	case EventSell:
		return "Sell"
	case EventSync:
		return "Sync"
	case EventLock:
		return "Lock"
	case EventListed:
		return "Listed"
	case EventSwap:
		return "Swap"
	default:
		return "Unknown"
	}
}

// ParseEventType converts a case-insensitive name into an EventType.
func ParseEventType(input string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "create":
		return EventCreate, nil
	case "buy":
		return EventBuy, nil
	case "sell":
		return EventSell, nil
	case "sync":
		return EventSync, nil
	case "lock":
		return EventLock, nil
	case "listed":
		return EventListed, nil
	case "swap":
		return EventSwap, nil
	default:
		return EventUnknown, fmt.Errorf("unknown event type: %s", input)
	}
}

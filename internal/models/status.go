package models

import (
	"errors"
	"fmt"
)

type OrderStatus string

const (
	StatusOpen            OrderStatus = "OPEN"
	StatusFinalized       OrderStatus = "FINALIZED"
	StatusInTransit       OrderStatus = "IN_TRANSIT"
	StatusDelivered       OrderStatus = "DELIVERED"
	StatusRefundRequested OrderStatus = "REFUND_REQUESTED"
	StatusRefundGranted   OrderStatus = "REFUND_GRANTED"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

var transitions = map[OrderStatus][]OrderStatus{
	StatusOpen:            {StatusFinalized},
	StatusFinalized:       {StatusInTransit, StatusRefundRequested},
	StatusInTransit:       {StatusDelivered, StatusRefundRequested},
	StatusDelivered:       {StatusRefundRequested},
	StatusRefundRequested: {StatusRefundGranted},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves the order along the fulfillment graph.
func (o *Order) Transition(next OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", o.Status, next, ErrInvalidTransition)
	}
	o.Status = next
	return nil
}

func (s OrderStatus) Ordered() bool { return s != StatusOpen && s != "" }

func (s OrderStatus) BeingDelivered() bool { return s == StatusInTransit }

func (s OrderStatus) RefundRequested() bool {
	return s == StatusRefundRequested || s == StatusRefundGranted
}

func (s OrderStatus) RefundGranted() bool { return s == StatusRefundGranted }

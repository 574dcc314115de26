package models

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderOpen: {OrderPaid, OrderCancelled},
}

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemOrdered:   {ItemPreparing, ItemCancelled},
	ItemPreparing: {ItemReady, ItemCancelled},
	ItemReady:     {ItemServed},
}

// CanTransitionOrder reports whether an order may move from -> to.
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionItem reports whether a kitchen item may move from -> to.
// Items only move forward; SERVED and CANCELLED are terminal.
func CanTransitionItem(from, to ItemStatus) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

package domain

type CartState string

const (
	CartStateEmpty      CartState = "EMPTY"
	CartStateBuilding   CartState = "BUILDING"
	CartStateValidating CartState = "VALIDATING"
	CartStateSubmitting CartState = "SUBMITTING"
)

var cartTransitions = map[CartState][]CartState{
	CartStateEmpty:      {CartStateBuilding},
	CartStateBuilding:   {CartStateBuilding, CartStateEmpty, CartStateValidating},
	CartStateValidating: {CartStateBuilding, CartStateSubmitting},
	CartStateSubmitting: {CartStateEmpty, CartStateBuilding},
}

func CanTransitionTo(from, to CartState) bool {
	for _, s := range cartTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s CartState) String() string {
	return string(s)
}

package settlement

import "sync"

// customerLocks serializa settlements por cliente. Dos requests del mismo
// cliente no se intercalan; clientes distintos avanzan en paralelo.
type customerLocks struct {
	mu    sync.Mutex
	byKey map[string]*sync.Mutex
}

func newCustomerLocks() *customerLocks {
	return &customerLocks{byKey: make(map[string]*sync.Mutex)}
}

// lock toma el mutex del cliente y devuelve su unlock.
func (l *customerLocks) lock(customerID string) func() {
	l.mu.Lock()
	m, ok := l.byKey[customerID]
	if !ok {
		m = &sync.Mutex{}
		l.byKey[customerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

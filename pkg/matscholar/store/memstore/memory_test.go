package memstore

import (
	"testing"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store/storetest"
)

func TestMemStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

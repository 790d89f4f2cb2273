package bootstrap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentsClose(t *testing.T) {
	var order []string
	comps := &Components{}
	comps.OnClose(func() error {
		order = append(order, "database")
		return nil
	})
	comps.OnClose(func() error {
		order = append(order, "qdrant")
		return errors.New("connection reset")
	})
	comps.OnClose(func() error {
		order = append(order, "redis")
		return nil
	})

	comps.Close()
	comps.Close()

	assert.Equal(t, []string{"redis", "qdrant", "database"}, order)
}

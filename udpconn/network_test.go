// SPDX-License-Identifier: GPL-3.0-or-later

package udpconn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNetwork_receiveTimeout(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		nx := &Network{}
		assert.Equal(t, DefaultReceiveTimeout, nx.receiveTimeout())
		assert.Equal(t, 500*time.Millisecond, nx.receiveTimeout())
	})

	t.Run("negative value", func(t *testing.T) {
		nx := &Network{ReceiveTimeout: -time.Second}
		assert.Equal(t, DefaultReceiveTimeout, nx.receiveTimeout())
	})

	t.Run("custom value", func(t *testing.T) {
		nx := &Network{ReceiveTimeout: 50 * time.Millisecond}
		assert.Equal(t, 50*time.Millisecond, nx.receiveTimeout())
	})
}

func TestNetwork_timeNow(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		nx := &Network{}
		before := time.Now()
		got := nx.timeNow()
		assert.False(t, got.Before(before))
	})

	t.Run("custom", func(t *testing.T) {
		fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		nx := &Network{TimeNow: func() time.Time { return fixed }}
		assert.Equal(t, fixed, nx.timeNow())
	})
}

func TestInitSocketLibrary(t *testing.T) {
	// the initialization is process-wide and idempotent
	assert.NoError(t, initSocketLibrary())
	assert.NoError(t, initSocketLibrary())
}

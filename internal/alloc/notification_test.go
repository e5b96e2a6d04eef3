package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/settings"
)

func TestNotificationBadges(t *testing.T) {
	target := aarch32(t)

	t.Run("badges are distinct powers of two within the mask", func(t *testing.T) {
		b := newCompBuilder()
		nt := notifConnector("Notification", true)
		b.connect("c1", nt, []string{"c1src.out"}, []string{"server.n1"})
		b.connect("c2", nt, []string{"c2src.out"}, []string{"server.n2"})
		b.connect("c3", nt, []string{"c3src.out"}, []string{"server.n3"})
		comp := b.seal(t)

		store := settings.New()
		store.Set("server", "global_endpoint_base", int64(0))

		var badges []uint64
		for _, ref := range []string{"server.n1", "server.n2", "server.n3"} {
			set, err := NotificationBadges(comp, b.ends[ref], store, target)
			require.NoError(t, err)
			require.False(t, set.IRQList)
			badges = append(badges, set.Badge)
		}
		assert.Equal(t, []uint64{1, 2, 4}, badges)
	})

	t.Run("default base occupies bit zero", func(t *testing.T) {
		b := newCompBuilder()
		b.connect("c1", notifConnector("Notification", true), []string{"src.out"}, []string{"server.n1"})
		comp := b.seal(t)

		// base defaults to 1 and the default mask excludes it, so the first
		// cursor position is bit 1 and the emitted badge is 2|1.
		set, err := NotificationBadges(comp, b.ends["server.n1"], settings.New(), target)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), set.Badge)
	})

	t.Run("mask skips disallowed bit positions", func(t *testing.T) {
		b := newCompBuilder()
		nt := notifConnector("Notification", true)
		b.connect("c1", nt, []string{"s1.out"}, []string{"server.n1"})
		b.connect("c2", nt, []string{"s2.out"}, []string{"server.n2"})
		comp := b.seal(t)

		store := settings.New()
		store.Set("server", "global_endpoint_base", int64(0))
		store.Set("server", "global_endpoint_mask", int64(0b1010))

		set1, err := NotificationBadges(comp, b.ends["server.n1"], store, target)
		require.NoError(t, err)
		set2, err := NotificationBadges(comp, b.ends["server.n2"], store, target)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), set1.Badge)
		assert.Equal(t, uint64(8), set2.Badge)

		// Raw badge bits stay inside the mask.
		assert.Zero(t, set1.Badge&^uint64(0b1010))
		assert.Zero(t, set2.Badge&^uint64(0b1010))
	})

	t.Run("exhaustion inside a narrow mask", func(t *testing.T) {
		b := newCompBuilder()
		nt := notifConnector("Notification", true)
		b.connect("c1", nt, []string{"s1.out"}, []string{"server.n1"})
		b.connect("c2", nt, []string{"s2.out"}, []string{"server.n2"})
		comp := b.seal(t)

		store := settings.New()
		store.Set("server", "global_endpoint_base", int64(0))
		store.Set("server", "global_endpoint_mask", int64(0b10))

		_, err := NotificationBadges(comp, b.ends["server.n1"], store, target)
		require.NoError(t, err)
		_, err = NotificationBadges(comp, b.ends["server.n2"], store, target)
		assert.ErrorIs(t, err, ErrExhausted)
	})

	t.Run("from side allocates against the from ends", func(t *testing.T) {
		b := newCompBuilder()
		b.connect("c1", notifConnector("Notification", false), []string{"client.out"}, []string{"sink.in"})
		comp := b.seal(t)

		store := settings.New()
		store.Set("client", "global_endpoint_base", int64(0))
		set, err := NotificationBadges(comp, b.ends["client.out"], store, target)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), set.Badge)
	})

	t.Run("deterministic across invocations", func(t *testing.T) {
		b := newCompBuilder()
		nt := notifConnector("Notification", true)
		b.connect("c1", nt, []string{"s1.out"}, []string{"server.n1"})
		b.connect("c2", nt, []string{"s2.out"}, []string{"server.n2"})
		comp := b.seal(t)

		store := settings.New()
		first, err := NotificationBadges(comp, b.ends["server.n2"], store, target)
		require.NoError(t, err)
		second, err := NotificationBadges(comp, b.ends["server.n2"], store, target)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("unmatched end reports badge-not-allocatable", func(t *testing.T) {
		b := newCompBuilder()
		plain := notifConnector("Plain", true)
		b.connect("c1", plain, []string{"a.out"}, []string{"b.in"})
		comp := b.seal(t)

		// a.out is a from end, but the connector only grants the to side.
		_, err := NotificationBadges(comp, b.ends["a.out"], settings.New(), target)
		require.ErrorIs(t, err, ErrNotAllocatable)
		assert.ErrorContains(t, err, "a.out")
	})
}

func TestNotificationIRQBadges(t *testing.T) {
	target := aarch32(t)

	dtbSetting := func(cells []any) map[string]any {
		return map[string]any{"query": []any{map[string]any{"interrupts": cells}}}
	}

	t.Run("one badge per interrupt line", func(t *testing.T) {
		b := newCompBuilder()
		hw := composition.NewConnectorType("seL4DTBHardwareThreadless", nil)
		b.connect("hw1", hw, []string{"dev.src"}, []string{"driver.irq"})
		comp := b.seal(t)

		store := settings.New()
		store.Set("driver", "global_endpoint_base", int64(0))
		store.Set("driver.irq", "generate_interrupts", true)
		// Two interrupts in the 3-cell ARM format.
		store.Set("driver.irq", "dtb", dtbSetting([]any{0, 5, 2, 0, 9, 4}))

		set, err := NotificationBadges(comp, b.ends["driver.irq"], store, target)
		require.NoError(t, err)
		require.True(t, set.IRQList)
		assert.Equal(t, []uint64{1, 2}, set.IRQBadges)
	})

	t.Run("irq badges and endpoint badges share the cursor", func(t *testing.T) {
		b := newCompBuilder()
		hw := composition.NewConnectorType("seL4DTBHWThreadless", nil)
		nt := notifConnector("Notification", true)
		b.connect("hw1", hw, []string{"dev.src"}, []string{"driver.irq"})
		b.connect("c1", nt, []string{"peer.out"}, []string{"driver.note"})
		comp := b.seal(t)

		store := settings.New()
		store.Set("driver", "global_endpoint_base", int64(0))
		store.Set("driver.irq", "generate_interrupts", true)
		store.Set("driver.irq", "dtb", dtbSetting([]any{0, 5, 2}))

		// The IRQ badge burns value 1, so the endpoint end gets 2.
		set, err := NotificationBadges(comp, b.ends["driver.note"], store, target)
		require.NoError(t, err)
		require.False(t, set.IRQList)
		assert.Equal(t, uint64(2), set.Badge)
	})

	t.Run("missing dtb setting is fatal", func(t *testing.T) {
		b := newCompBuilder()
		hw := composition.NewConnectorType("seL4DTBHardwareThreadless", nil)
		b.connect("hw1", hw, []string{"dev.src"}, []string{"driver.irq"})
		comp := b.seal(t)

		store := settings.New()
		store.Set("driver.irq", "generate_interrupts", true)

		_, err := NotificationBadges(comp, b.ends["driver.irq"], store, target)
		assert.ErrorContains(t, err, "no dtb setting")
	})
}

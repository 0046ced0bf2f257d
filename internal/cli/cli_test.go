package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemName(t *testing.T) {
	assert.Equal(t, "Abyssal whip", itemName([]string{"Abyssal", "whip"}))
	assert.Equal(t, "", itemName(nil))
}

func TestCoinFlag(t *testing.T) {
	v, err := coinFlag("alert-low", "")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = coinFlag("alert-low", "1.5m")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(1500000), *v)

	_, err = coinFlag("alert-low", "cheap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--alert-low")
}

func TestMonitorOptionsFromFlags(t *testing.T) {
	t.Cleanup(func() {
		monitorAlertLow, monitorAlertHigh, monitorBuyBelow, monitorSellAbove = "", "", "", ""
	})
	monitorAlertLow = "1,000"
	monitorSellAbove = "2k"

	opts, err := monitorOptions("Cannonball")
	require.NoError(t, err)
	assert.Equal(t, "Cannonball", opts.Item)
	require.NotNil(t, opts.AlertLow)
	assert.Equal(t, int64(1000), *opts.AlertLow)
	assert.Nil(t, opts.AlertHigh)
	assert.Nil(t, opts.BuyBelow)
	require.NotNil(t, opts.SellAbove)
	assert.Equal(t, int64(2000), *opts.SellAbove)

	rules := opts.Rules()
	require.Len(t, rules, 2)

	monitorBuyBelow = "-5"
	_, err = monitorOptions("Cannonball")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "gewatch dev")
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"search", "price", "monitor", "icon", "show", "export", "backfill", "prune", "simulate-alert", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

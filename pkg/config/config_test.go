package config

import (
	"os"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/margined-protocol/isotonic-lend/pkg/types"
	"github.com/stretchr/testify/require"

	sdkmath "cosmossdk.io/math"
)

func TestSdkIntUnmarshalTOML(t *testing.T) {
	tomlData := `
market_cap = "500000000000000000000"
collateral_ratio = "0.7"
market_token = "uatom"
`
	filePath := "test_market.toml"
	err := os.WriteFile(filePath, []byte(tomlData), 0o600)
	require.NoError(t, err)
	defer os.Remove(filePath)

	type TestMarket struct {
		MarketCap       types.SdkInt `toml:"market_cap" mapstructure:"market_cap"`
		CollateralRatio string       `toml:"collateral_ratio" mapstructure:"collateral_ratio"`
		MarketToken     string       `toml:"market_token" mapstructure:"market_token"`
	}

	var cfg TestMarket
	_, err = toml.DecodeFile(filePath, &cfg)
	require.NoError(t, err)

	want, _ := sdkmath.NewIntFromString("500000000000000000000")
	require.Equal(t, want, cfg.MarketCap.Value)
	require.Equal(t, "0.7", cfg.CollateralRatio)
	require.Equal(t, "uatom", cfg.MarketToken)
}

func TestLoadConfig(t *testing.T) {
	tomlData := `
sweep_interval_ms = 500

[db]
host = "localhost"
port = 5432
user = "postgres"
dbname = "isotonic"

[agency]
gov_address = "gov1"
common_token = "uusdc"
liquidation_price = "0.9"
liquidation_fee = "0.05"
liquidation_initiation_fee = "0.01"
market_code_id = 1
token_code_id = 2

[[market]]
market_token = "uatom"
charge_period_seconds = 3600
collateral_ratio = "0.7"
reserve_factor = "0.2"

[[oracle_pool]]
pool_id = "pool1"
denom1 = "uatom"
denom2 = "uusdc"
`
	tmpFile, err := os.CreateTemp(t.TempDir(), "test_config_*.toml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.Write([]byte(tomlData))
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	cfg, err := LoadConfig(tmpFile.Name())
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.DB.Host)
	require.Equal(t, "isotonic", cfg.DB.DBName)
	require.Equal(t, "gov1", cfg.Agency.GovAddress)
	require.Equal(t, "uusdc", cfg.Agency.CommonToken)
	require.Equal(t, uint64(1), cfg.Agency.MarketCodeID)

	require.Len(t, cfg.Markets, 1)
	require.Equal(t, "uatom", cfg.Markets[0].MarketToken)
	require.Equal(t, int64(3600), cfg.Markets[0].ChargePeriod)

	require.Len(t, cfg.OraclePools, 1)
	require.Equal(t, "pool1", cfg.OraclePools[0].PoolID)
}

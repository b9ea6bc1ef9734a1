package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

const dropContract = "0x1234567890abcdef1234567890abcdef12345678"

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "w3mint-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "w3mint")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "W3MINT_CONFIG_DIR="+configDir)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3mint")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	lower := strings.ToLower(out)
	for _, c := range []string{"mint", "drop", "wallet", "network", "rpc", "config"} {
		assert.Contains(t, lower, c)
	}
	assert.Contains(t, out, "--testnet")
	assert.Contains(t, out, "--mainnet")
}

func TestNetworkList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "list")
	require.NoError(t, err)

	for _, c := range []string{"ethereum", "base", "polygon", "arbitrum", "optimism"} {
		assert.Contains(t, strings.ToLower(out), c, "network list should contain %s", c)
	}
	assert.NotContains(t, strings.ToLower(out), "solana")
}

func TestNetworkListTestnetIDs(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--testnet", "network", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "84532")
	assert.Contains(t, out, "mode testnet")
}

func TestDropAddListShowRemove(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "drop", "add", "genesis",
		"--network", "base", "--contract", dropContract, "--price", "0.01",
		"--name", "Genesis Pass", "--terms", "https://example.com/terms")
	require.NoError(t, err, out)
	assert.Contains(t, out, "genesis")

	out, err = runCLI(t, dir, "drop", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "genesis")
	assert.Contains(t, out, "0.01 ETH")

	out, err = runCLI(t, dir, "drop", "show", "genesis")
	require.NoError(t, err)
	assert.Contains(t, out, "Genesis Pass")
	assert.Contains(t, out, "ERC-721")
	assert.Contains(t, out, "https://example.com/terms")

	_, err = runCLI(t, dir, "drop", "remove", "genesis", "-y")
	require.NoError(t, err)

	out, err = runCLI(t, dir, "drop", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No drops saved")
}

func TestDropAddERC1155NeedsTokenID(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "drop", "add", "edition", "--contract", dropContract, "--erc1155", "--price", "0")
	assert.Error(t, err)
	assert.Contains(t, out, "token id")
}

func TestDropAddUnknownNetwork(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "drop", "add", "x", "--network", "unknownchain99", "--contract", dropContract)
	assert.Error(t, err)
}

func TestDropSyncWithoutSource(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "drop", "sync")
	assert.Error(t, err)
	assert.Contains(t, out, "no drop source")
}

func TestMintWithoutDrop(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "mint")
	assert.Error(t, err)
	assert.Contains(t, out, "no drop given")
}

func TestMintUnknownDrop(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "mint", "nope", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "drop not found")
}

func TestWalletAddAndList(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "wallet", "add", "testwal", dropContract)
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "testwal")
	assert.Contains(t, out, "watch-only")
}

func TestWalletRemove(t *testing.T) {
	dir := t.TempDir()

	runCLI(t, dir, "wallet", "add", "w1", dropContract) //nolint:errcheck

	// Use stdin to auto-confirm the prompt.
	cmd := exec.Command(binaryPath, "wallet", "remove", "w1")
	cmd.Env = append(os.Environ(), "W3MINT_CONFIG_DIR="+dir)
	cmd.Stdin = strings.NewReader("y\n")
	cmd.Run() //nolint:errcheck

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "w1")
}

func TestRPCAdd(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "rpc", "add", "base", "https://custom.rpc.url")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "rpc", "list", "base")
	assert.Contains(t, out, "custom.rpc.url")
}

func TestRPCAlgorithmSet(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "rpc", "algorithm", "set", "round-robin")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "round-robin")
}

func TestConfigList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default_network")
	assert.Contains(t, out, "rpc_algorithm")
	assert.Contains(t, out, "receipt_timeout")
}

func TestConfigSetDefaultNetwork(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-default-network", "polygon")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "polygon")
}

func TestConfigSetReceiptTimeout(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-receipt-timeout", "0")
	assert.Error(t, err)

	_, err = runCLI(t, dir, "config", "set-receipt-timeout", "60")
	require.NoError(t, err)
	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, `"receipt_timeout": 60`)
}

func TestTestnetMainnetMutuallyExclusive(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "--testnet", "--mainnet", "config", "list")
	assert.Error(t, err)
}

func TestGlobalTestnetFlagInherited(t *testing.T) {
	dir := t.TempDir()
	// The --testnet flag should be accepted on any subcommand position.
	out, err := runCLI(t, dir, "config", "list", "--testnet")
	require.NoError(t, err)
	assert.Contains(t, out, `"network_mode": "testnet"`)
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}

func TestMintHelpShowsFlags(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "mint", "--help")
	require.NoError(t, err)
	for _, f := range []string{"--quantity", "--to", "--wallet", "--yes", "--one-shot", "--testnet"} {
		assert.Contains(t, out, f)
	}
}

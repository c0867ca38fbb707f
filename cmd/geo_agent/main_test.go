package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-visibility/internal/cache"
	"github.com/jonathan/geo-visibility/internal/config"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/pipeline"
	"github.com/jonathan/geo-visibility/internal/server"
)

func TestParseUserID(t *testing.T) {
	id, err := parseUserID("")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	want := uuid.New()
	id, err = parseUserID(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = parseUserID("user-42")
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, "", []byte(`{"url":"https://example.com","overallScore":56}`)))
	assert.Equal(t, "{\n  \"url\": \"https://example.com\",\n  \"overallScore\": 56\n}\n", buf.String())

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, writeReport(nil, path, []byte(`{"a":1}`)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	assert.Error(t, writeReport(&buf, "", []byte(`not json`)))
}

func TestOpenStorage_DefaultsToMemory(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	st, err := openStorage(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, "memory", st.Kind)
	assert.Nil(t, st.DB)
	assert.IsType(t, &cache.MemoryStore{}, st.Store)
}

func TestOpenStorage_UnreachableRedis(t *testing.T) {
	cfg := &config.Config{RedisAddr: "127.0.0.1:1"}
	_, err := openStorage(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestAuthConfig_WithoutDatabase(t *testing.T) {
	var srvCfg server.Config
	require.NoError(t, authConfig(&srvCfg, &storage{Kind: "memory"}, logging.Discard()))
	assert.Nil(t, srvCfg.Users)
	assert.Nil(t, srvCfg.History)
	assert.Nil(t, srvCfg.JWT)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	progressPrinter(&buf)(pipeline.ProgressEvent{Step: pipeline.StepBrand, Message: "Identified Example"})
	assert.Equal(t, "[brand] Identified Example\n", buf.String())
}

func TestSchemaCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"schema"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var schema map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Contains(t, schema, "properties")
}

func TestMigrateCommand_Print(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"migrate", "--print"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		migratePrint = false
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "CREATE TABLE IF NOT EXISTS domain_history")
}

func TestAnalyzeCommand_Binary(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "analyze").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "accepts 1 arg")

	output, err = exec.Command(binaryPath, "analyze", "example.com", "--user", "not-a-uuid").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "invalid --user")
}

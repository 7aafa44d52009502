package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/shutterlink/pkg/device"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	prev := detectPort
	detectPort = func() string { return "/dev/ttyUSB7" }
	t.Cleanup(func() { detectPort = prev })

	db, err := OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx))
	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestBootstrapCreatesDefaults(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	needed, err := db.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, needed)

	// A second bootstrap must not add another profile.
	require.NoError(t, db.Bootstrap(ctx))
	profiles, err := db.Profiles().List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "default", profiles[0].Name)

	cfg, err := db.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.APIAddress())
	assert.Equal(t, "/dev/ttyUSB7", cfg.SerialPort())
	assert.Equal(t, DefaultBaudRate, cfg.BaudRate())
	assert.True(t, cfg.BLEEnabled())
	assert.Equal(t, "ShutterTester", cfg.BLE.DeviceName)
	assert.Equal(t, 10*time.Second, cfg.BLE.ScanTimeout)
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cfg, err := db.ActiveConfig(ctx)
	require.NoError(t, err)
	settings := db.Settings(cfg.Profile.ID)

	o, err := settings.Orientation(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.OrientationAuto, o)

	v, err := settings.ViewMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.ViewSinglePoint, v)

	require.NoError(t, settings.SetOrientation(ctx, device.OrientationHorizontal))
	require.NoError(t, settings.SetViewMode(ctx, device.ViewShutterTiming))

	o, err = settings.Orientation(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.OrientationHorizontal, o)

	v, err = settings.ViewMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.ViewShutterTiming, v)

	assert.ErrorIs(t, settings.SetOrientation(ctx, "diagonal"), device.ErrValidation)
	assert.ErrorIs(t, settings.SetViewMode(ctx, "panorama"), device.ErrValidation)
}

func TestSettingsMissingProfile(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Settings(999).Orientation(context.Background())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLinkConfigUpdates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cfg, err := db.ActiveConfig(ctx)
	require.NoError(t, err)
	id := cfg.Profile.ID

	require.NoError(t, db.Links().UpdateSerial(ctx, &SerialLink{ProfileID: id, Port: "/dev/ttyACM0", BaudRate: 57600}))
	require.NoError(t, db.Links().UpdateBLE(ctx, &BLELink{
		ProfileID:   id,
		Enabled:     false,
		DeviceName:  "Bench",
		ScanTimeout: 3 * time.Second,
	}))
	require.NoError(t, db.APIServers().Update(ctx, &APIServer{ProfileID: id, Host: "127.0.0.1", Port: 9090}))

	cfg, err = db.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort())
	assert.Equal(t, 57600, cfg.BaudRate())
	assert.False(t, cfg.BLEEnabled())
	assert.Equal(t, "Bench", cfg.BLE.DeviceName)
	assert.Equal(t, 3*time.Second, cfg.BLE.ScanTimeout)
	assert.Equal(t, "127.0.0.1:9090", cfg.APIAddress())

	assert.Error(t, db.APIServers().Update(ctx, &APIServer{ProfileID: id, Port: 0}))
}

func TestProfiles(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := db.Profiles()

	bench := &Profile{Name: "bench"}
	require.NoError(t, store.Create(ctx, bench))
	require.NoError(t, store.SetActive(ctx, bench.ID))

	active, err := store.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bench", active.Name)

	// New profiles get their own settings row.
	o, err := db.Settings(bench.ID).Orientation(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.OrientationAuto, o)

	assert.ErrorIs(t, store.SetActive(ctx, 999), ErrProfileNotFound)
	_, err = store.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUseProfile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	bench, err := db.UseProfile(ctx, "darkroom")
	require.NoError(t, err)
	assert.True(t, bench.IsActive)

	cfg, err := db.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "darkroom", cfg.Profile.Name)
	assert.Equal(t, "", cfg.SerialPort(), "new profiles have no detected port")

	again, err := db.UseProfile(ctx, "darkroom")
	require.NoError(t, err)
	assert.Equal(t, bench.ID, again.ID)

	def, err := db.UseProfile(ctx, "default")
	require.NoError(t, err)
	assert.NotEqual(t, bench.ID, def.ID)

	profiles, err := db.Profiles().List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

func TestActiveConfigWithoutProfile(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	_, err = db.ActiveConfig(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveProfile)
}

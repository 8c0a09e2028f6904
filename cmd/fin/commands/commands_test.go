package commands_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fin/cmd/fin/commands"
	"go.trai.ch/fin/internal/adapters/buildid"
	"go.trai.ch/fin/internal/adapters/fs"
	"go.trai.ch/fin/internal/adapters/manifest"
	"go.trai.ch/fin/internal/adapters/telemetry"
	"go.trai.ch/fin/internal/app"
	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/fin/internal/core/ports/mocks"
	"go.trai.ch/fin/internal/engine/closure"
	"go.trai.ch/fin/internal/engine/expand"
	"go.trai.ch/fin/internal/engine/merge"
	"go.trai.ch/fin/internal/engine/scan"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newTestApp(loader ports.ConfigLoader, reader ports.ElfReader, log ports.Logger) *app.App {
	return app.New(
		loader,
		expand.NewExpander(manifest.NewLoader()),
		merge.NewMerger(fs.NewHasher()),
		scan.NewScanner(reader, 1),
		closure.NewResolver(),
		reader,
		fs.NewWalker(),
		buildid.NewStore(),
		log,
		telemetry.NewNoOp(),
	)
}

func TestVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cli := commands.New(newTestApp(
		mocks.NewMockConfigLoader(ctrl),
		mocks.NewMockElfReader(ctrl),
		mocks.NewMockLogger(ctrl),
	))

	var out bytes.Buffer
	cli.SetOutput(&out, &out)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "dev")
}

func TestFinalize_UsesConfigFlag(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLoader.EXPECT().Load("custom.yaml").Return(nil, zerr.New("plan not found")).Times(1)

	cli := commands.New(newTestApp(
		mockLoader,
		mocks.NewMockElfReader(ctrl),
		mocks.NewMockLogger(ctrl),
	))
	cli.SetArgs([]string{"-c", "custom.yaml", "finalize"})

	err := cli.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan not found")
}

func TestElfInfo_WritesJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := mocks.NewMockElfReader(ctrl)
	mockReader.EXPECT().ReadInfo("bin/app").Return(&domain.ElfInfo{
		CPU:     "x64",
		BuildID: "aabb",
	}, nil).Times(1)

	cli := commands.New(newTestApp(
		mocks.NewMockConfigLoader(ctrl),
		mockReader,
		mocks.NewMockLogger(ctrl),
	))

	var out bytes.Buffer
	cli.SetOutput(&out, &out)
	cli.SetArgs([]string{"elfinfo", "bin/app"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), `"cpu": "x64"`)
	assert.Contains(t, out.String(), `"build_id": "aabb"`)
}

func TestExpand_RequiresOutputFlag(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cli := commands.New(newTestApp(
		mocks.NewMockConfigLoader(ctrl),
		mocks.NewMockElfReader(ctrl),
		mocks.NewMockLogger(ctrl),
	))

	var out bytes.Buffer
	cli.SetOutput(&out, &out)
	cli.SetArgs([]string{"expand", "frag.json"})

	require.Error(t, cli.Execute(context.Background()))
}

package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scopeai/scopeai/internal/api/mocks"
	"github.com/scopeai/scopeai/internal/domain/export"
	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type currentStub struct {
	project *project.Project
}

func (s currentStub) Current() *project.Project {
	return s.project
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestCoordinator_ExportNamesArtifactDeterministically(t *testing.T) {
	backend := &mocks.ExportBackend{}
	backend.On("ExportProject", mock.Anything, int64(7), "excel").
		Return([]byte("workbook-bytes"), nil)

	coord := export.NewCoordinator(backend, currentStub{
		project: &project.Project{ID: 7, Name: "Acme CRM Migration"},
	}, nil)
	coord.SetNow(fixedClock)

	artifact, err := coord.Export(context.Background(), export.FormatExcel)
	require.NoError(t, err)
	require.Equal(t, "scopeai_Acme-CRM-Migration_2025-03-14.xlsx", artifact.Filename)
	require.Equal(t, export.FormatExcel, artifact.Format)
	require.Equal(t, []byte("workbook-bytes"), artifact.Data)
	backend.AssertExpectations(t)
}

func TestCoordinator_ExtensionsFollowFormat(t *testing.T) {
	cases := []struct {
		format export.Format
		ext    string
	}{
		{export.FormatExcel, "xlsx"},
		{export.FormatPDF, "pdf"},
		{export.FormatJSON, "json"},
		{export.FormatMSProj, "xml"},
		{export.FormatJira, "csv"},
		{export.FormatDevOps, "json"},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			backend := &mocks.ExportBackend{}
			backend.On("ExportProject", mock.Anything, int64(1), string(tc.format)).
				Return([]byte{0x1}, nil)

			coord := export.NewCoordinator(backend, currentStub{
				project: &project.Project{ID: 1, Name: "p"},
			}, nil)
			coord.SetNow(fixedClock)

			artifact, err := coord.Export(context.Background(), tc.format)
			require.NoError(t, err)
			require.Equal(t, "scopeai_p_2025-03-14."+tc.ext, artifact.Filename)
		})
	}
}

func TestCoordinator_NoProjectFailsBeforeNetwork(t *testing.T) {
	backend := &mocks.ExportBackend{}
	coord := export.NewCoordinator(backend, currentStub{}, nil)

	_, err := coord.Export(context.Background(), export.FormatPDF)
	require.ErrorIs(t, err, export.ErrNoProject)
	backend.AssertNotCalled(t, "ExportProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestCoordinator_UnknownFormatRejected(t *testing.T) {
	backend := &mocks.ExportBackend{}
	coord := export.NewCoordinator(backend, currentStub{
		project: &project.Project{ID: 1, Name: "p"},
	}, nil)

	_, err := coord.Export(context.Background(), export.Format("docx"))
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
	backend.AssertNotCalled(t, "ExportProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestCoordinator_BackendFailurePropagates(t *testing.T) {
	backend := &mocks.ExportBackend{}
	backend.On("ExportProject", mock.Anything, int64(1), "jira").
		Return(nil, context.DeadlineExceeded)

	coord := export.NewCoordinator(backend, currentStub{
		project: &project.Project{ID: 1, Name: "p"},
	}, nil)

	_, err := coord.Export(context.Background(), export.FormatJira)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSanitizeName(t *testing.T) {
	backend := &mocks.ExportBackend{}
	backend.On("ExportProject", mock.Anything, mock.Anything, mock.Anything).
		Return([]byte{0x1}, nil)

	cases := []struct {
		name string
		want string
	}{
		{"Acme / Phase #2", "Acme---Phase--2"},
		{"  padded  ", "padded"},
		{"safe_name-1.0", "safe_name-1.0"},
		{"///", "---"},
		{"", "project"},
		{"   ", "project"},
	}
	for _, tc := range cases {
		coord := export.NewCoordinator(backend, currentStub{
			project: &project.Project{ID: 1, Name: tc.name},
		}, nil)
		coord.SetNow(fixedClock)

		artifact, err := coord.Export(context.Background(), export.FormatJSON)
		require.NoError(t, err)
		require.Equal(t, "scopeai_"+tc.want+"_2025-03-14.json", artifact.Filename)
	}
}

func TestArtifact_WriteFile(t *testing.T) {
	artifact := &export.Artifact{
		Filename: "scopeai_p_2025-03-14.json",
		Format:   export.FormatJSON,
		Data:     []byte(`{"ok":true}`),
	}

	dir := t.TempDir()
	path, err := artifact.WriteFile(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, artifact.Filename), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, artifact.Data, data)
}

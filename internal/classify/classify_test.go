package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phaus/ncsync/internal/model"
)

func TestClassify_S1_NewRemoteFile(t *testing.T) {
	e := model.Entry{ExistsRemote: true, ExistsLocal: false, Synced: false, RemoteMtime: 1700000000000}
	assert.Equal(t, Download, Classify(e))
}

func TestClassify_S2_NewLocalFile(t *testing.T) {
	e := model.Entry{ExistsRemote: false, ExistsLocal: true, Synced: false, LocalMtime: 1700000100000}
	assert.Equal(t, Upload, Classify(e))
}

func TestClassify_S3_Conflict(t *testing.T) {
	e := model.Entry{
		ExistsRemote: true, ExistsLocal: true, Synced: true,
		RemoteMtimePrev: 1700000000000, RemoteMtime: 1700000300000,
		LocalMtimePrev: 1700000000000, LocalMtime: 1700000200000,
	}
	assert.Equal(t, Conflict, Classify(e))
}

func TestClassify_S4_RemoteDeletionPropagates(t *testing.T) {
	// Previously synced at equal mtimes; remote side no longer observed,
	// mtime fields retain their last known (equal) values.
	e := model.Entry{
		ExistsRemote: false, ExistsLocal: true, Synced: true,
		RemoteMtime: 1700000000000, LocalMtime: 1700000000000,
	}
	assert.Equal(t, DeleteLocal, Classify(e))
}

func TestClassify_DeleteRemote(t *testing.T) {
	e := model.Entry{
		ExistsRemote: true, ExistsLocal: false, Synced: true,
		RemoteMtime: 1700000000000, LocalMtime: 1700000000000,
	}
	assert.Equal(t, DeleteRemote, Classify(e))
}

func TestClassify_B1_EqualMtimeNoOp(t *testing.T) {
	e := model.Entry{
		ExistsRemote: true, ExistsLocal: true, Synced: true,
		RemoteMtime: 1700000000000, LocalMtime: 1700000000000,
		RemoteMtimePrev: 1700000000000, LocalMtimePrev: 1700000000000,
	}
	assert.Equal(t, NoOp, Classify(e))
}

func TestClassify_B2_LocalOnly(t *testing.T) {
	unsynced := model.Entry{ExistsRemote: false, ExistsLocal: true, Synced: false, LocalMtime: 100}
	assert.Equal(t, Upload, Classify(unsynced))

	deleted := model.Entry{
		ExistsRemote: false, ExistsLocal: true, Synced: true,
		RemoteMtime: 100, LocalMtime: 100,
	}
	assert.Equal(t, DeleteLocal, Classify(deleted))
}

func TestClassify_NoPriorNoFalseConflict(t *testing.T) {
	// First-ever pass: prev mtimes are zero, so even divergent mtimes on
	// both sides must not be misread as a conflict.
	e := model.Entry{
		ExistsRemote: true, ExistsLocal: true, Synced: false,
		RemoteMtime: 500, LocalMtime: 900,
	}
	assert.NotEqual(t, Conflict, Classify(e))
}

func TestClassify_UploadOnNewerLocal(t *testing.T) {
	e := model.Entry{
		ExistsRemote: true, ExistsLocal: true, Synced: true,
		RemoteMtime: 100, LocalMtime: 200,
	}
	assert.Equal(t, Upload, Classify(e))
}

func TestClassify_DownloadOnNewerRemote(t *testing.T) {
	e := model.Entry{
		ExistsRemote: true, ExistsLocal: true, Synced: true,
		RemoteMtime: 200, LocalMtime: 100,
	}
	assert.Equal(t, Download, Classify(e))
}

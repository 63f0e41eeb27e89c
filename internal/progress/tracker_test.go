package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinedProgressTracker_StartUpdateFinish(t *testing.T) {
	tr := NewCombinedProgressTracker(&Config{ProgressBarWidth: 10, ShowStatistics: false})
	tr.SetOperation("upload Docs/a.txt")
	tr.Start(100)
	tr.Update(50)
	tr.Update(100)
	tr.Finish()
	tr.RecordUpload(100)

	stats := tr.GetStatistics()
	assert.Equal(t, 1, stats.Uploads)
	assert.Equal(t, int64(100), stats.TotalBytes)
}

func TestCombinedProgressTracker_Error(t *testing.T) {
	tr := NewCombinedProgressTracker(nil)
	tr.SetEnabled(false) // disabled tracker must not panic or render
	tr.Start(10)
	tr.Update(5)
	tr.Error(errors.New("boom"))
	tr.Finish()

	stats := tr.GetStatistics()
	assert.Equal(t, 0, stats.Errors) // disabled tracker records nothing
}

func TestCombinedProgressTracker_RecordDownloadDelete(t *testing.T) {
	tr := NewCombinedProgressTracker(&Config{ShowStatistics: false})
	tr.RecordDownload(256)
	tr.RecordDelete()

	stats := tr.GetStatistics()
	assert.Equal(t, 1, stats.Downloads)
	assert.Equal(t, 1, stats.Deletes)
}

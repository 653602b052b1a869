package output_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskman/internal/output"
	"taskman/internal/service"
	"taskman/internal/testutil"
)

func TestFormatTask_Golden(t *testing.T) {
	tasks := []service.Task{
		{ID: "12", Title: "Ship release", Priority: service.PriorityHigh, Status: service.StatusPending},
		{ID: "7", Title: "line one\nline two", Priority: service.PriorityMedium, Status: service.StatusCompleted},
		{ID: "1234", Title: "   ", Priority: service.PriorityLow, Status: service.StatusPending},
	}

	var buf bytes.Buffer
	for _, task := range tasks {
		output.FormatTask(&buf, task)
	}
	output.FormatPageFooter(&buf, 2, 3)

	testutil.Golden(t, "list", buf.String())
}

func TestFormatTaskDetail_Golden(t *testing.T) {
	task := service.Task{
		ID:          "3",
		Title:       "Write report",
		Description: "first paragraph\r\nsecond line\n",
		Priority:    service.PriorityLow,
		Status:      service.StatusCompleted,
		CreatedAt:   time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, task)

	testutil.Golden(t, "detail", buf.String())
}

func TestFormatTaskDetail_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, service.Task{ID: "1", Title: "x", Priority: service.PriorityMedium, Status: service.StatusPending})

	assert.Equal(t, "id:          1\ntitle:       x\npriority:    medium\nstatus:      pending\n", buf.String())
}

func TestFormatPageFooter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	output.FormatPageFooter(&buf, 1, 0)
	assert.Equal(t, "page 1 of 1\n", buf.String())
}


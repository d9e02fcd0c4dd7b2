package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalith-99/beans/internal/models"
)

func TestInvolvement(t *testing.T) {
	tests := []struct {
		name        string
		mine, total int64
		want        float64
	}{
		{"empty workspace", 0, 0, 0},
		{"nothing of mine", 0, 4, 0},
		{"half", 2, 4, 0.5},
		{"everything", 4, 4, 1},
		{"capped", 3, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Involvement(tt.mine, tt.total), 1e-9)
		})
	}
}

func TestUtilization(t *testing.T) {
	assert.Zero(t, Utilization(0, 0))
	assert.InDelta(t, 0.25, Utilization(1, 4), 1e-9)
	assert.InDelta(t, 1.0, Utilization(3, 3), 1e-9)
}

func TestRecorder_AppendsOnlyOnChange(t *testing.T) {
	data := models.NewData()
	t0 := time.Unix(100, 0)
	New(data, t0).Seed(1)

	data.Channels = append(data.Channels, models.Channel{ID: 1, MemberIDs: []int64{1}})
	t1 := t0.Add(time.Minute)
	rec := New(data, t1)
	rec.Memberships(1)
	rec.Memberships(1)
	rec.Workspace()

	st := data.UserStats[1]
	assert.Equal(t, []models.StatPoint{{Count: 0, At: t0}, {Count: 1, At: t1}}, st.ChannelsJoined)
	assert.Equal(t, []models.StatPoint{{Count: 0, At: t0}}, st.DmsJoined, "unchanged count adds no point")
	assert.Equal(t, []models.StatPoint{{Count: 0, At: t0}, {Count: 1, At: t1}}, data.Workspace.ChannelsExist)
	assert.Len(t, data.Workspace.MessagesExist, 1)
}

func TestRecorder_MessagesSentIsRunningTotal(t *testing.T) {
	data := models.NewData()
	now := time.Unix(100, 0)
	rec := New(data, now)
	rec.Seed(1)

	data.Channels = append(data.Channels, models.Channel{ID: 1, MemberIDs: []int64{1}})
	rec.Memberships(1)
	for id := int64(0); id < 2; id++ {
		data.Channels[0].Messages = append(data.Channels[0].Messages, models.Message{ID: id + 1, SenderID: 1})
		rec.MessageSent(1)
	}
	rec.Workspace()

	// Removing a message lowers what exists but not what was sent.
	data.Channels[0].Messages = data.Channels[0].Messages[:1]
	rec.Workspace()

	assert.Equal(t, int64(2), Latest(data.UserStats[1].MessagesSent))
	assert.Equal(t, int64(1), Latest(data.Workspace.MessagesExist))

	report := ForUser(data, 1, now)
	assert.Equal(t, 1.0, report.InvolvementRate)
}

func TestForUser_MissingHistory(t *testing.T) {
	data := models.NewData()
	since := time.Unix(50, 0)

	report := ForUser(data, 9, since)
	require.Len(t, report.ChannelsJoined, 1)
	assert.Equal(t, models.StatPoint{Count: 0, At: since}, report.ChannelsJoined[0])
	assert.Zero(t, report.InvolvementRate)
}

func TestForWorkspace_Utilization(t *testing.T) {
	data := models.NewData()
	data.Users = []models.User{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	data.Channels = []models.Channel{{ID: 1, MemberIDs: []int64{1}}}
	data.Dms = []models.Dm{{ID: 1, MemberIDs: []int64{1, 2}}}

	report := ForWorkspace(data)
	assert.InDelta(t, 0.5, report.UtilizationRate, 1e-9)
	assert.NotNil(t, report.MessagesExist)
}

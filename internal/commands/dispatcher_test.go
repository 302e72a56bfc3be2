package commands

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ortelius/media-provisioner/internal/services"
	"github.com/ortelius/media-provisioner/model"
	"github.com/ortelius/media-provisioner/restapi/modules/auth"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingRunner struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (r *recordingRunner) run(action model.Action, usernames []string) *model.BatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := model.NewBatchResult(action, usernames)
	for _, u := range usernames {
		r.calls = append(r.calls, string(action)+" "+u)
		status := model.StatusSucceeded
		if r.fail {
			status = model.StatusFailed
		}
		result.Record(model.Outcome{Username: u, Backend: model.BackendJellyfin, Status: status})
	}
	return result
}

func (r *recordingRunner) Add(_ context.Context, usernames []string) *model.BatchResult {
	return r.run(model.ActionAdd, usernames)
}

func (r *recordingRunner) Delete(_ context.Context, usernames []string) *model.BatchResult {
	return r.run(model.ActionDelete, usernames)
}

type recordingPublisher struct {
	reports []string
	err     error
}

func (p *recordingPublisher) PublishResult(_ context.Context, _ int64, _ *model.BatchResult, report string) error {
	p.reports = append(p.reports, report)
	return p.err
}

func newDispatcher(t *testing.T, runner Runner, opts ...Option) *Dispatcher {
	allow := auth.NewAllowList([]int64{42}, zaptest.NewLogger(t))
	return NewDispatcher(runner, allow, services.ReportOptions{}, zaptest.NewLogger(t), opts...)
}

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		name string
		args []string
	}{
		{"/adduser alice bob", "adduser", []string{"alice", "bob"}},
		{"/adduser@ProvisionBot carol", "adduser", []string{"carol"}},
		{"deluser   dave ", "deluser", []string{"dave"}},
		{"/DelUser", "deluser", []string{}},
	}
	for _, tt := range tests {
		cmd, ok := Parse(tt.text)
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.name, cmd.Name)
		assert.Equal(t, tt.args, cmd.Args)
	}

	_, ok := Parse("   ")
	assert.False(t, ok)
}

func TestHandle_UnauthorizedNeverRuns(t *testing.T) {
	runner := &recordingRunner{}
	d := newDispatcher(t, runner)

	for _, text := range []string{"/adduser bob", "/deluser bob", "/adduser"} {
		reply := d.Handle(context.Background(), 7, text)
		assert.Equal(t, StatusUnauthorized, reply.Status)
		assert.Equal(t, "You are not authorized to use this command.", reply.Text)
	}
	assert.Empty(t, runner.calls)
}

func TestHandle_Usage(t *testing.T) {
	runner := &recordingRunner{}
	d := newDispatcher(t, runner)

	reply := d.Handle(context.Background(), 42, "/adduser")
	assert.Equal(t, StatusUsage, reply.Status)
	assert.Equal(t, "Usage: /adduser <username> [username...]", reply.Text)

	reply = d.Handle(context.Background(), 42, "/deluser@bot")
	assert.Equal(t, "Usage: /deluser <username> [username...]", reply.Text)
	assert.Empty(t, runner.calls)
}

func TestHandle_UnknownCommandShowsHelp(t *testing.T) {
	reply := newDispatcher(t, &recordingRunner{}).Handle(context.Background(), 7, "/start")
	assert.Equal(t, StatusHelp, reply.Status)
	assert.Equal(t, HelpText, reply.Text)
}

func TestHandle_RunsBatch(t *testing.T) {
	runner := &recordingRunner{}
	publisher := &recordingPublisher{}
	metrics := services.NewMetrics()
	d := newDispatcher(t, runner, WithPublisher(publisher), WithMetrics(metrics))

	reply := d.Handle(context.Background(), 42, "/adduser alice bob")

	assert.Equal(t, StatusComplete, reply.Status)
	assert.Equal(t, "Created in Jellyfin:\n- alice\n- bob", reply.Text)
	assert.Equal(t, []string{"add alice", "add bob"}, runner.calls)
	assert.Equal(t, []string{reply.Text}, publisher.reports)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Registry, "provisioner_commands_total"))
}

func TestHandle_PartialAndPublishError(t *testing.T) {
	runner := &recordingRunner{fail: true}
	publisher := &recordingPublisher{err: errors.New("broker down")}
	d := newDispatcher(t, runner, WithPublisher(publisher))

	reply := d.Handle(context.Background(), 42, "/deluser erin")

	assert.Equal(t, StatusPartial, reply.Status)
	assert.Equal(t, services.NoChangesMessage, reply.Text)
	assert.Len(t, publisher.reports, 1)
}

func TestRun_SerializesCommands(t *testing.T) {
	runner := &recordingRunner{}
	d := newDispatcher(t, runner)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Run(context.Background(), 42, model.ActionAdd, []string{"a", "b"})
		}()
	}
	wg.Wait()

	require.Len(t, runner.calls, 20)
	for i := 0; i < len(runner.calls); i += 2 {
		assert.Equal(t, "add a", runner.calls[i])
		assert.Equal(t, "add b", runner.calls[i+1])
	}
}

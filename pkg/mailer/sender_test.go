package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-registration-flow/config"
	tpl "github.com/oksasatya/go-registration-flow/pkg/mailer/templates"
)

type fakePublisher struct {
	jobs []EmailJob
	err  error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body.(EmailJob))
	return nil
}

type fakeTransport struct {
	to, subject, text, html string
	err                     error
}

func (f *fakeTransport) Send(_ context.Context, to, subject, text, html string) error {
	f.to, f.subject, f.text, f.html = to, subject, text, html
	return f.err
}

func TestQueueSender(t *testing.T) {
	pub := &fakePublisher{}
	s := NewQueueSender(pub, &config.Config{AppName: "demo"})

	require.NoError(t, s.SendPassphrase(context.Background(), "alice", "a@example.com", "abcd1234"))
	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "a@example.com", job.To)
	assert.Equal(t, tpl.Passphrase, job.Template)
	assert.Equal(t, "abcd1234", job.Data["Passphrase"])
	assert.Equal(t, "alice", job.Data["Name"])
}

func TestQueueSender_PublishError(t *testing.T) {
	boom := errors.New("broker down")
	s := NewQueueSender(&fakePublisher{err: boom}, &config.Config{})

	err := s.SendPassphrase(context.Background(), "alice", "a@example.com", "abcd1234")
	assert.ErrorIs(t, err, boom)
}

func TestDirectSender(t *testing.T) {
	tr := &fakeTransport{}
	s := NewDirectSender(tr, &config.Config{})

	require.NoError(t, s.SendPassphrase(context.Background(), "alice", "a@example.com", "abcd1234"))
	assert.Equal(t, "a@example.com", tr.to)
	assert.Equal(t, "Your Passphrase for Registration", tr.subject)
	assert.Contains(t, tr.text, "abcd1234")
	assert.Contains(t, tr.html, "abcd1234")
}

func TestDirectSender_TransportError(t *testing.T) {
	s := NewDirectSender(&fakeTransport{err: errors.New("smtp")}, &config.Config{})
	assert.Error(t, s.SendPassphrase(context.Background(), "alice", "a@example.com", "abcd1234"))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.SendPassphrase(context.Background(), "alice", "a@example.com", "abcd1234"))
}

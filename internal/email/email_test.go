package email

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	return m.Called(to, subject).Error(0)
}

func TestCompositeEmailSender_CallsAllAndJoinsErrors(t *testing.T) {
	failing := new(mockSender)
	failing.On("Send", []string{"a@x.test"}, "hi").Return(errors.New("relay down"))
	ok := new(mockSender)
	ok.On("Send", []string{"a@x.test"}, "hi").Return(nil)

	cs := NewCompositeEmailSender(failing, nil, ok)
	assert.Equal(t, 2, cs.Len())

	err := cs.Send(context.Background(), []string{"a@x.test"}, "hi", []byte("body"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
	ok.AssertCalled(t, "Send", []string{"a@x.test"}, "hi")
}

func TestCompositeEmailSender_Empty(t *testing.T) {
	err := NewCompositeEmailSender().Send(context.Background(), []string{"a@x.test"}, "hi", nil)
	assert.Error(t, err)
}

func TestFileEmailSender_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail", "out.log")
	s, err := NewFileEmailSender(path)
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), []string{"a@x.test"}, "first", []byte("one\r\n")))
	require.NoError(t, s.Send(context.Background(), []string{"b@x.test"}, "second", []byte("two\r\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "--- End Logged Email ---"))
	assert.Contains(t, string(content), "Subject: second")

	_, err = NewFileEmailSender("  ")
	assert.Error(t, err)
}

func TestMessageBytes(t *testing.T) {
	msg := Message{
		From:    "offers@quote.test",
		To:      []string{"jane@shipper.test"},
		Cc:      []string{"ops@quote.test"},
		Subject: "Ihr Angebot 03EX0417",
		Body:    "line one\nline two",
		Headers: map[string]string{"X-Offer-No": "03EX0417"},
		Date:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	raw := string(msg.Bytes())

	assert.Contains(t, raw, "To: jane@shipper.test\r\n")
	assert.Contains(t, raw, "Cc: ops@quote.test\r\n")
	assert.Contains(t, raw, "X-Offer-No: 03EX0417\r\n")
	assert.Contains(t, raw, "\r\n\r\nline one\r\nline two\r\n")
	assert.Equal(t, []string{"jane@shipper.test", "ops@quote.test"}, msg.Recipients())
}

func TestRedisSender_Mailbox(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}
	defer rdb.Close()
	require.NoError(t, rdb.Del(ctx, mailboxKey("jane@shipper.test")).Err())

	s := NewRedisSender(rdb)
	none, err := s.Latest(ctx, "jane@shipper.test")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, s.Send(ctx, []string{"Jane@shipper.test"}, "first", []byte("1")))
	require.NoError(t, s.Send(ctx, []string{"jane@shipper.test"}, "second", []byte("2")))

	latest, err := s.Latest(ctx, "jane@shipper.test")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "second", latest.Subject)
}

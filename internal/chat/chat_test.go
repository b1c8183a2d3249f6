package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubReplier struct {
	reply string
	ok    bool
	calls int
}

func (s *stubReplier) Reply(ctx context.Context, message string) (string, bool) {
	s.calls++
	return s.reply, s.ok
}

// TestClassify проверяет порядок правил и отдельное слово "do".
func TestClassify(t *testing.T) {
	cases := map[string]Intent{
		"What is the price of a houseboat?": IntentBudget,
		"Budget for a plan":                 IntentBudget,
		"What can I do in Kochi?":           IntentActivity,
		"Any activity tonight":              IntentActivity,
		"Add a member":                      IntentGroup,
		"Is the group ready":                IntentGroup,
		"Where is the doctor":               IntentGeneric,
		"hello":                             IntentGeneric,
	}
	for message, want := range cases {
		if got := Classify(message); got != want {
			t.Fatalf("Classify(%q) = %s, want %s", message, got, want)
		}
	}
}

// TestCannedReply проверяет тексты заготовленных ответов.
func TestCannedReply(t *testing.T) {
	if got := CannedReply("cost?"); !strings.HasPrefix(got, "Budget tip:") {
		t.Fatalf("unexpected budget reply: %s", got)
	}
	if got := CannedReply("members"); got != "Use Travel Group to add or remove members." {
		t.Fatalf("unexpected group reply: %s", got)
	}
	if got := CannedReply("hi"); got != "Got it! I will connect to the chatbot backend automatically when available." {
		t.Fatalf("unexpected generic reply: %s", got)
	}
}

// TestClientReplyFields проверяет извлечение ответа из reply, text и сырого JSON.
func TestClientReplyFields(t *testing.T) {
	bodies := map[string]string{
		"/reply": `{"reply":"from reply"}`,
		"/text":  `{"text":"from text"}`,
		"/raw":   `{"answer":"x"}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bodies[r.URL.Path]))
	}))
	defer srv.Close()

	cases := map[string]string{
		"/reply": "from reply",
		"/text":  "from text",
		"/raw":   `{"answer":"x"}`,
	}
	for path, want := range cases {
		reply, ok := NewClient([]string{srv.URL + path}, time.Second).Reply(context.Background(), "hi")
		if !ok || reply != want {
			t.Fatalf("%s: expected %q, got %q (ok=%v)", path, want, reply, ok)
		}
	}
}

// TestClientTriesCandidates проверяет переход к следующему адресу и таймаут.
func TestClientTriesCandidates(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer slow.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer broken.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer good.Close()

	client := NewClient([]string{slow.URL, "", broken.URL, good.URL}, 50*time.Millisecond)
	reply, ok := client.Reply(context.Background(), "hi")
	if !ok || reply != "ok" {
		t.Fatalf("expected reply from last candidate, got %q (ok=%v)", reply, ok)
	}

	if _, ok := NewClient([]string{slow.URL}, 50*time.Millisecond).Reply(context.Background(), "hi"); ok {
		t.Fatal("expected timeout to fail")
	}
}

// TestServiceTranscript проверяет приветствие и добавление сообщений.
func TestServiceTranscript(t *testing.T) {
	replier := &stubReplier{reply: "Sure!", ok: true}
	service := NewService(replier, 0)
	id := uuid.New()

	if got := service.Transcript(id); len(got) != 1 || got[0].Content != WelcomeMessage {
		t.Fatalf("expected welcome message, got %+v", got)
	}

	reply, messages := service.Send(context.Background(), id, "  Hi there ")
	if reply == nil || reply.Content != "Sure!" || reply.Canned {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if len(messages) != 3 || messages[1].Role != RoleUser || messages[1].Content != "Hi there" {
		t.Fatalf("unexpected transcript: %+v", messages)
	}

	if reply, messages := service.Send(context.Background(), id, "   "); reply != nil || len(messages) != 3 || replier.calls != 1 {
		t.Fatalf("expected empty message to be ignored, got %+v", messages)
	}

	if other := service.Transcript(uuid.New()); len(other) != 1 {
		t.Fatalf("expected isolated transcript, got %+v", other)
	}
}

// TestServiceFallback проверяет заготовленный ответ при недоступном чат-боте.
func TestServiceFallback(t *testing.T) {
	service := NewService(&stubReplier{}, 0)

	reply, _ := service.Send(context.Background(), uuid.New(), "Which group members are coming?")
	if reply == nil || !reply.Canned || reply.Content != cannedReplies[IntentGroup] {
		t.Fatalf("unexpected fallback reply: %+v", reply)
	}
}

// TestServicePrune проверяет удаление неактивной переписки.
func TestServicePrune(t *testing.T) {
	service := NewService(&stubReplier{reply: "ok", ok: true}, time.Minute)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	stale := uuid.New()
	service.Send(context.Background(), stale, "hi")

	now = now.Add(2 * time.Minute)
	service.Send(context.Background(), uuid.New(), "hi")

	if got := service.Transcript(stale); len(got) != 1 {
		t.Fatalf("expected fresh transcript after prune, got %d messages", len(got))
	}
}

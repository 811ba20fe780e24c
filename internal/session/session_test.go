package session_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/nongzhi-ai/nongzhi/internal/session"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
)

const testPrompt = "你是「农智」智能农业助手。"

func newSession(t *testing.T, id string) *session.Session {
	t.Helper()
	return session.NewStore(testPrompt).GetOrCreate(id)
}

func TestMessage_Validate(t *testing.T) {
	t.Parallel()
	call := llm.ToolCall{ID: "c1", Name: "water_zone", Arguments: `{"zone":"东北"}`}

	tests := []struct {
		name    string
		msg     session.Message
		wantErr bool
	}{
		{"user", session.User("你好"), false},
		{"assistant text", session.Assistant("你好！", "", nil), false},
		{"assistant with calls only", session.Assistant("", "", []llm.ToolCall{call}), false},
		{"assistant reasoning only", session.Assistant("", "先查一下当前温度。", nil), false},
		{"assistant empty", session.Assistant("", "", nil), true},
		{"tool result", session.ToolResult("c1", `{"ok":true}`), false},
		{"tool without call id", session.ToolResult("", "{}"), true},
		{"user with tool fields", session.Message{Role: session.RoleUser, Content: "hi", ToolCallID: "c1"}, true},
		{"unknown role", session.Message{Role: "narrator", Content: "hi"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.msg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSession_TranscriptStartsWithSystemPrompt(t *testing.T) {
	t.Parallel()
	sess := newSession(t, "s1")

	msgs := sess.Transcript()
	if len(msgs) != 1 {
		t.Fatalf("new transcript has %d messages, want 1", len(msgs))
	}
	if msgs[0].Role != session.RoleSystem || msgs[0].Content != testPrompt {
		t.Errorf("first message = %+v, want system prompt", msgs[0])
	}
}

func TestSession_AppendRejectsSecondSystem(t *testing.T) {
	t.Parallel()
	sess := newSession(t, "s1")
	if err := sess.Append(session.System("另一个提示")); err == nil {
		t.Fatal("expected error appending a second system message")
	}
}

func TestSession_AppendOrder(t *testing.T) {
	t.Parallel()
	sess := newSession(t, "s1")

	call := llm.ToolCall{ID: "c1", Name: "get_current_sensor_data", Arguments: `{}`}
	steps := []session.Message{
		session.User("现在温度多少？"),
		session.Assistant("", "", []llm.ToolCall{call}),
		session.ToolResult("c1", `{"value":24.5}`),
		session.Assistant("当前温度 24.5°C。", "", nil),
	}
	for i, m := range steps {
		if err := sess.Append(m); err != nil {
			t.Fatalf("append step %d: %v", i, err)
		}
	}

	msgs := sess.Transcript()
	if len(msgs) != 5 {
		t.Fatalf("transcript has %d messages, want 5", len(msgs))
	}
	wantRoles := []session.Role{
		session.RoleSystem, session.RoleUser, session.RoleAssistant,
		session.RoleTool, session.RoleAssistant,
	}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("message[%d].Role = %q, want %q", i, msgs[i].Role, want)
		}
	}
}

func TestSession_TranscriptIsSnapshot(t *testing.T) {
	t.Parallel()
	sess := newSession(t, "s1")
	if err := sess.Append(session.User("第一条")); err != nil {
		t.Fatal(err)
	}

	snap := sess.Transcript()
	if err := sess.Append(session.User("第二条")); err != nil {
		t.Fatal(err)
	}
	if len(snap) != 2 {
		t.Errorf("snapshot grew after later append: len = %d", len(snap))
	}
}

func TestSession_VisibleHistory(t *testing.T) {
	t.Parallel()
	sess := newSession(t, "s1")

	call := llm.ToolCall{ID: "c1", Name: "water_zone", Arguments: `{"zone":"东北","amount":10}`}
	mustAppend(t, sess, session.User("浇水"))
	mustAppend(t, sess, session.Assistant("", "", []llm.ToolCall{call}))
	sess.RecordToolName("c1", "water_zone")
	mustAppend(t, sess, session.ToolResult("c1", `{"success":true}`))
	mustAppend(t, sess, session.ToolResult("c-unknown", `{}`))

	vis := sess.VisibleHistory(func(name string) string {
		if name == "water_zone" {
			return "💧 浇水"
		}
		return name
	})

	if len(vis) != 4 {
		t.Fatalf("visible history has %d entries, want 4 (system excluded)", len(vis))
	}
	for _, vm := range vis {
		if vm.Role == "system" {
			t.Error("system message must not be visible")
		}
	}
	if vis[2].DisplayName != "💧 浇水" {
		t.Errorf("tool display name = %q, want 💧 浇水", vis[2].DisplayName)
	}
	if vis[3].DisplayName != "工具" {
		t.Errorf("unknown call display name = %q, want 工具", vis[3].DisplayName)
	}
}

func TestSession_ReasoningDefaultsAndToggle(t *testing.T) {
	t.Parallel()
	sess := newSession(t, "s1")

	enabled, effort := sess.Reasoning()
	if enabled {
		t.Error("reasoning should default to disabled")
	}
	if effort != session.EffortMedium {
		t.Errorf("default effort = %q, want medium", effort)
	}

	sess.SetReasoning(true)
	if err := sess.SetReasoningEffort(session.EffortHigh); err != nil {
		t.Fatalf("set effort: %v", err)
	}
	enabled, effort = sess.Reasoning()
	if !enabled || effort != session.EffortHigh {
		t.Errorf("state = (%v, %q), want (true, high)", enabled, effort)
	}

	if err := sess.SetReasoningEffort("extreme"); err == nil {
		t.Error("expected error for invalid effort")
	} else if !strings.Contains(err.Error(), "extreme") {
		t.Errorf("error should name the bad value, got: %v", err)
	}
}

func TestSession_TurnLockSerialises(t *testing.T) {
	t.Parallel()
	sess := newSession(t, "s1")

	const turns = 20
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.BeginTurn()
			defer sess.EndTurn()
			if err := sess.Append(session.User("问")); err != nil {
				t.Error(err)
			}
			if err := sess.Append(session.Assistant("答", "", nil)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	msgs := sess.Transcript()
	if len(msgs) != 1+2*turns {
		t.Fatalf("transcript has %d messages, want %d", len(msgs), 1+2*turns)
	}
	// A user message must always be directly followed by its answer.
	for i := 1; i < len(msgs); i += 2 {
		if msgs[i].Role != session.RoleUser || msgs[i+1].Role != session.RoleAssistant {
			t.Fatalf("interleaved turn at index %d: %q, %q", i, msgs[i].Role, msgs[i+1].Role)
		}
	}
}

func TestStore_GetOrCreateAndDelete(t *testing.T) {
	t.Parallel()
	st := session.NewStore(testPrompt)

	a := st.GetOrCreate("a")
	if again := st.GetOrCreate("a"); again != a {
		t.Error("GetOrCreate should return the same session for the same id")
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}

	if _, ok := st.Get("missing"); ok {
		t.Error("Get should report missing sessions")
	}

	st.Delete("a")
	if _, ok := st.Get("a"); ok {
		t.Error("session should be gone after Delete")
	}
	st.Delete("a") // deleting twice is a no-op
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	t.Parallel()
	st := session.NewStore(testPrompt)
	a := st.GetOrCreate("a")
	b := st.GetOrCreate("b")

	a.SetReasoning(true)
	mustAppend(t, a, session.User("a 的问题"))

	if enabled, _ := b.Reasoning(); enabled {
		t.Error("reasoning toggle leaked between sessions")
	}
	if len(b.Transcript()) != 1 {
		t.Error("transcript leaked between sessions")
	}
}

func mustAppend(t *testing.T, sess *session.Session, msg session.Message) {
	t.Helper()
	if err := sess.Append(msg); err != nil {
		t.Fatalf("append: %v", err)
	}
}

package stdio

import "testing"

func TestFramerSingleLineMessage(t *testing.T) {
	fr := &framer{}

	msg, ok := fr.push([]byte(`{"jsonrpc":"2.0","method":"ping","id":1}`))
	if !ok {
		t.Fatal("expected a complete message")
	}
	if got := string(msg); got != `{"jsonrpc":"2.0","method":"ping","id":1}` {
		t.Errorf("unexpected message: %s", got)
	}
	if fr.pending() {
		t.Error("buffer should be empty after emitting")
	}
}

func TestFramerAccumulatesPrettyPrintedJSON(t *testing.T) {
	fr := &framer{}

	lines := []string{
		`{`,
		`  "jsonrpc": "2.0",`,
		`  "method": "ping",`,
		`  "id": 1`,
	}
	for _, line := range lines {
		if _, ok := fr.push([]byte(line)); ok {
			t.Fatalf("line %q completed the message early", line)
		}
	}

	msg, ok := fr.push([]byte(`}`))
	if !ok {
		t.Fatal("closing brace should complete the message")
	}
	if len(msg) == 0 {
		t.Fatal("empty message emitted")
	}
}

func TestFramerWhitespaceOnlyNeverCompletes(t *testing.T) {
	fr := &framer{}

	for _, line := range []string{"", "   ", "\t"} {
		if _, ok := fr.push([]byte(line)); ok {
			t.Errorf("whitespace line %q must not complete a message", line)
		}
	}
	if fr.pending() {
		t.Error("whitespace must not count as pending input")
	}
}

func TestFramerEmitsTrimmedMessage(t *testing.T) {
	fr := &framer{}

	msg, ok := fr.push([]byte(`   {"jsonrpc":"2.0","method":"ping","id":1}   `))
	if !ok {
		t.Fatal("expected a complete message")
	}
	if msg[0] != '{' || msg[len(msg)-1] != '}' {
		t.Errorf("message not trimmed: %q", msg)
	}
}

func TestFramerPendingAfterIncompleteInput(t *testing.T) {
	fr := &framer{}

	if _, ok := fr.push([]byte(`{"jsonrpc": "2.0",`)); ok {
		t.Fatal("incomplete JSON must not complete a message")
	}
	if !fr.pending() {
		t.Error("incomplete buffer must report pending")
	}
}

func TestFramerResetsBetweenMessages(t *testing.T) {
	fr := &framer{}

	if _, ok := fr.push([]byte(`{"id":1}`)); !ok {
		t.Fatal("first message did not complete")
	}
	msg, ok := fr.push([]byte(`{"id":2}`))
	if !ok {
		t.Fatal("second message did not complete")
	}
	if got := string(msg); got != `{"id":2}` {
		t.Errorf("second message contaminated by first: %s", got)
	}
}

package message

import (
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"angle brackets", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"ampersand", "a & b", "a &amp; b"},
		{"quotes", `say "hi" and 'bye'`, "say &#34;hi&#34; and &#39;bye&#39;"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.input); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNewUserMessage(t *testing.T) {
	t.Run("with text", func(t *testing.T) {
		msg := NewUserMessage("s1", "hello", nil)
		if msg.Role != RoleUser {
			t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
		}
		if msg.Text != "hello" {
			t.Errorf("Text = %q", msg.Text)
		}
		if msg.Timestamp.IsZero() {
			t.Error("Timestamp should be set")
		}
	})

	t.Run("attachment only gets placeholder text", func(t *testing.T) {
		atts := []Attachment{{Name: "f.txt", MimeType: "text/plain", Data: "eA=="}}
		msg := NewUserMessage("s1", "", atts)
		if msg.Text != AttachmentPlaceholder {
			t.Errorf("Text = %q, want %q", msg.Text, AttachmentPlaceholder)
		}
	})

	t.Run("text wins over placeholder", func(t *testing.T) {
		atts := []Attachment{{Name: "f.txt", MimeType: "text/plain", Data: "eA=="}}
		msg := NewUserMessage("s1", "look at this", atts)
		if msg.Text != "look at this" {
			t.Errorf("Text = %q", msg.Text)
		}
	})
}

func TestNewModelMessage(t *testing.T) {
	msg := NewModelMessage("s1")
	if msg.Role != RoleModel {
		t.Errorf("Role = %q, want %q", msg.Role, RoleModel)
	}
	if msg.Text != "" {
		t.Errorf("Text = %q, want empty", msg.Text)
	}
	if !msg.IsStreaming {
		t.Error("new model message should be streaming")
	}
}

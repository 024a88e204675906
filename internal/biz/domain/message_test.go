package domain

import "testing"

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{"conversation", ConversationText{Text: "hi Gemini"}, "hi Gemini"},
		{"conversation pointer", &ConversationText{Text: "hi"}, "hi"},
		{"extended", ExtendedText{Text: "quoted gemini"}, "quoted gemini"},
		{"extended pointer", &ExtendedText{Text: "quoted"}, "quoted"},
		{"nil pointer", (*ExtendedText)(nil), ""},
		{"nil payload", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.payload); got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessage_HasText(t *testing.T) {
	tests := []struct {
		msg  *Message
		want bool
	}{
		{&Message{Payload: ConversationText{Text: "hello"}}, true},
		{&Message{Payload: ConversationText{Text: "   \n"}}, false},
		{&Message{}, false},
		{nil, false},
	}

	for i, tt := range tests {
		if got := tt.msg.HasText(); got != tt.want {
			t.Errorf("case %d: HasText() = %v, want %v", i, got, tt.want)
		}
	}
}

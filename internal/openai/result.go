package openai

import "encoding/json"

// Result is the parsed outcome of one provider call: either the success payload
// or the raw body the provider returned.
type Result struct {
	OK      bool
	Content string
	Raw     json.RawMessage
}

func Success(content string) Result {
	return Result{OK: true, Content: content}
}

func Failure(raw []byte) Result {
	if !json.Valid(raw) {
		raw, _ = json.Marshal(map[string]string{"error": truncateBody(raw)})
	}
	return Result{Raw: json.RawMessage(raw)}
}

// TransportFailure wraps a failed round trip as an error-shaped body.
func TransportFailure(err error) Result {
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return Result{Raw: raw}
}

// Diagnostic is the text shown to the user when the call did not succeed.
// Long bodies are cut to keep the reply within Telegram's message limit.
func (r Result) Diagnostic() string {
	return truncateBody(r.Raw)
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func parseChat(status int, body []byte) Result {
	if status >= 300 {
		return Failure(body)
	}
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(body)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Failure(body)
	}
	return Success(resp.Choices[0].Message.Content)
}

func parseImage(status int, body []byte) Result {
	if status >= 300 {
		return Failure(body)
	}
	var resp imageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(body)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return Failure(body)
	}
	return Success(resp.Data[0].URL)
}

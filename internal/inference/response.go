package inference

import (
	"errors"
	"fmt"

	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"
)

// ErrNoText is returned when a response does not carry text at
// messages[0].content[0].text.
var ErrNoText = errors.New("response contains no text")

// FirstText returns the text of the first content block of the first message
// in resp. A missing message, content block or text field is an error, never
// an empty success.
func FirstText(resp generativeaiinference.ChatResponse) (string, error) {
	switch body := resp.ChatResult.ChatResponse.(type) {
	case generativeaiinference.GenericChatResponse:
		return firstChoiceText(body.Choices)
	case *generativeaiinference.GenericChatResponse:
		if body == nil {
			return "", fmt.Errorf("%w: empty response body", ErrNoText)
		}
		return firstChoiceText(body.Choices)
	case generativeaiinference.CohereChatResponse:
		return derefText(body.Text)
	case *generativeaiinference.CohereChatResponse:
		if body == nil {
			return "", fmt.Errorf("%w: empty response body", ErrNoText)
		}
		return derefText(body.Text)
	case nil:
		return "", fmt.Errorf("%w: empty response body", ErrNoText)
	default:
		return "", fmt.Errorf("%w: unsupported response format %T", ErrNoText, body)
	}
}

func firstChoiceText(choices []generativeaiinference.ChatChoice) (string, error) {
	if len(choices) == 0 || choices[0].Message == nil {
		return "", fmt.Errorf("%w: no messages", ErrNoText)
	}

	content := choices[0].Message.GetContent()
	if len(content) == 0 {
		return "", fmt.Errorf("%w: first message has no content", ErrNoText)
	}

	switch block := content[0].(type) {
	case generativeaiinference.TextContent:
		return derefText(block.Text)
	case *generativeaiinference.TextContent:
		if block == nil {
			return "", fmt.Errorf("%w: first content block is empty", ErrNoText)
		}
		return derefText(block.Text)
	default:
		return "", fmt.Errorf("%w: first content block is %T, not text", ErrNoText, block)
	}
}

func derefText(text *string) (string, error) {
	if text == nil {
		return "", fmt.Errorf("%w: text field missing", ErrNoText)
	}
	return *text, nil
}

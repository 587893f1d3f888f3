// Package interpreter wraps the external language-model API that turns a
// dream narrative into an interpretation. The handler depends on the
// Client interface so tests can substitute a stub for the hosted API.
package interpreter

import (
    "context"
    "errors"

    openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the API answers without any choices.
var ErrEmptyCompletion = errors.New("interpreter: empty completion")

// Client generates an interpretation for a submitted dream.
type Client interface {
    Interpret(ctx context.Context, name, message, language string) (string, error)
}

// OpenAI calls the chat-completion API with a per-language system and
// user prompt pair.
type OpenAI struct {
    client *openai.Client
    model  string
}

// NewOpenAI builds a client for the given API key and chat model.
func NewOpenAI(apiKey, model string) *OpenAI {
    return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

// Interpret sends the prompt pair and returns the first choice's content.
// Failures are returned to the caller untouched; the quota guard treats
// them as upstream generation failures, leaving the user's quota intact.
func (o *OpenAI) Interpret(ctx context.Context, name, message, language string) (string, error) {
    system, user := Prompts(name, message, language)
    resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
        Model:       o.model,
        Temperature: 0.7,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: system},
            {Role: openai.ChatMessageRoleUser, Content: user},
        },
    })
    if err != nil {
        return "", err
    }
    if len(resp.Choices) == 0 {
        return "", ErrEmptyCompletion
    }
    return resp.Choices[0].Message.Content, nil
}

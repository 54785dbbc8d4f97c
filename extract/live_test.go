package extract

import (
	"context"
	"os"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"github.com/farhan32742/nexusform/formschema"
)

func initLiveChatModel(t *testing.T) *openai.ChatModel {
	t.Helper()
	if os.Getenv("NEXUSFORM_RUN_LIVE_TESTS") != "1" {
		t.Skip("set NEXUSFORM_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY is empty")
		return nil
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	cm, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
	})
	if err != nil {
		t.Fatalf("init chat model: %v", err)
	}
	return cm
}

func TestExtractLive(t *testing.T) {
	cm := initLiveChatModel(t)
	if cm == nil {
		return
	}
	ctx := context.Background()
	extractor := NewToolBasedExtractor(cm)

	result, err := extractor.Extract(ctx, &Request{
		Schema: testSchema(t),
		Conversation: []*schema.Message{
			schema.UserMessage("Hi, I'm Ali Khan and I'm 28 years old."),
		},
		Record: formschema.Record{},
	})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	t.Logf("record: %v", result.Record)
	t.Logf("acknowledgement: %s", result.Acknowledgement)

	if result.Record["full_name"] != "Ali Khan" {
		t.Errorf("full_name = %v", result.Record["full_name"])
	}
	if result.Record["age"] != int64(28) {
		t.Errorf("age = %v", result.Record["age"])
	}
	if _, ok := result.Record["email"]; ok {
		t.Error("email was never stated and must not be invented")
	}

	// Second turn corrects the age.
	result, err = extractor.Extract(ctx, &Request{
		Schema: testSchema(t),
		Conversation: []*schema.Message{
			schema.UserMessage("Hi, I'm Ali Khan and I'm 28 years old."),
			schema.AssistantMessage(result.Acknowledgement, nil),
			schema.UserMessage("Sorry, I'm actually 29."),
		},
		Record: result.Record,
	})
	if err != nil {
		t.Fatalf("second extract failed: %v", err)
	}
	if result.Record["age"] != int64(29) {
		t.Errorf("corrected age = %v", result.Record["age"])
	}
	if result.Record["full_name"] != "Ali Khan" {
		t.Errorf("full_name lost on update: %v", result.Record["full_name"])
	}
}

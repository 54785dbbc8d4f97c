package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/farhan32742/nexusform/clarify"
	"github.com/farhan32742/nexusform/extract"
	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/review"
	"github.com/farhan32742/nexusform/session"
	"github.com/farhan32742/nexusform/submit"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	err = startApp(context.Background(), config)
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func travelFields() []formschema.FieldDescriptor {
	return []formschema.FieldDescriptor{
		{Name: "full_name", Type: formschema.TypeString, Required: true, Label: "Full Name"},
		{Name: "age", Type: formschema.TypeInteger, Required: true, Label: "Age"},
		{Name: "email", Type: formschema.TypeString, Required: true, Label: "Email", Pattern: `[\w.-]+@[\w.-]+\.\w+`},
		{Name: "destination", Type: formschema.TypeString, Required: true, Label: "Destination"},
	}
}

func startApp(ctx context.Context, config *Config) error {
	slog.SetLogLoggerLevel(slog.LevelWarn)
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return err
	}
	schema, err := formschema.Build(travelFields())
	if err != nil {
		return err
	}
	engine := session.NewEngine(
		formschema.StaticSource{Definition: schema},
		extract.NewToolBasedExtractor(cm),
		clarify.NewFailbackClarifier(
			clarify.NewToolBasedClarifier(cm),
			clarify.LocalClarifier{},
		),
		submit.SubmitterFunc(func(ctx context.Context, record formschema.Record) (*submit.Outcome, error) {
			return submit.ParseReply(fmt.Sprintf("%s Recorded %d fields.", submit.ReplySuccessPrefix, len(record)), false), nil
		}),
		session.NewMemoryStore(),
		session.Config{},
	)
	toolParser, err := review.NewToolBasedParser(cm)
	if err != nil {
		return err
	}
	decisions := review.NewFailbackParser(toolParser, review.NewKeywordParser())

	reply, err := engine.Start(ctx)
	if err != nil {
		return err
	}
	id := reply.SessionID
	fmt.Println("Welcome to the travel booking assistant. Tell me about your trip (e.g. \"I'm Ali, 28, flying to Istanbul\"):")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("Input closed. Bye.")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		switch reply.Pending {
		case session.ActionReview:
			decision, dErr := decisions.ParseDecision(ctx, input)
			if dErr != nil {
				return dErr
			}
			switch decision {
			case review.Approve:
				reply, err = engine.Approve(ctx, id)
			case review.Reject:
				reply, err = engine.Reject(ctx, id, input)
			default:
				fmt.Println("\nAssistant: Please reply \"yes\" to submit, or tell me what to change.\n======")
				continue
			}
		default:
			reply, err = engine.SubmitUserTurn(ctx, id, input)
		}
		if err != nil {
			return err
		}
		fmt.Printf("\nAssistant: %s\n======\n", reply.Message)
		if reply.Status == session.StatusTerminated {
			if reply.Outcome != nil {
				fmt.Printf("Session finished: %s\n", reply.Outcome.Message)
			}
			return nil
		}
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"scope-chat/internal/config"
	"scope-chat/internal/db"
	"scope-chat/internal/domain"
	"scope-chat/internal/llm"
	"scope-chat/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	loaded, err := service.LoadMockResponses(ctx, store.MockResponses, cfg.MockFile, logger)
	if err != nil {
		log.Fatal(err)
	}
	sampleRange, poolSize := service.MockBounds(cfg.MockSampleRange, cfg.MockPoolSize, loaded)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	selector := service.NewSourceSelector(cfg.GroupsStartingID)
	chatSvc := service.NewChatService(
		logger,
		service.NewIdentityService(logger, store.Users),
		service.NewHistoryService(store.Messages),
		service.NewScopeGate(),
		selector,
		service.NewMockEngine(store.MockResponses, sampleRange, poolSize),
		llmClient,
		service.NewMemorySeenStore(),
	)

	identity, err := askIdentity(reader)
	if err != nil {
		log.Fatalf("leer identidad: %v", err)
	}

	loadRes, err := chatSvc.LoadChat(ctx, identity)
	if err != nil {
		log.Fatalf("cargar historial: %v", err)
	}
	for _, m := range loadRes.Messages {
		printTurn(m)
	}

	fmt.Println("---- Modo Chat (escribe 'salir' para terminar) ----")
	var seen []int64
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			return
		}

		if selector.Select(identity.Group) == service.SourceMock {
			fmt.Println("(pensando...)")
		}
		res, err := chatSvc.Chat(ctx, service.ChatInput{
			Identity:    identity,
			Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: text}},
			Temperature: cfg.DefaultTemperature,
			SeenMockIDs: seen,
		})
		if err != nil {
			var upErr *llm.UpstreamError
			if errors.As(err, &upErr) {
				fmt.Printf("Error del modelo (%d): %s\n", upErr.StatusCode, string(upErr.Body))
				continue
			}
			fmt.Printf("Error en chat: %v\n", err)
			continue
		}
		if res.MockID != nil {
			seen = append(seen, *res.MockID)
		}
		printTurn(domain.ChatMessage{Role: domain.RoleAssistant, Content: res.Content})
	}
}

func askIdentity(reader *bufio.Reader) (service.IdentityInput, error) {
	name, err := prompt(reader, "Nombre: ")
	if err != nil {
		return service.IdentityInput{}, err
	}
	studentID, err := prompt(reader, "Legajo: ")
	if err != nil {
		return service.IdentityInput{}, err
	}
	var group int
	for {
		raw, err := prompt(reader, "Grupo: ")
		if err != nil {
			return service.IdentityInput{}, err
		}
		group, err = strconv.Atoi(raw)
		if err == nil {
			break
		}
		fmt.Println("Grupo invalido.")
	}
	member, err := prompt(reader, "Miembro: ")
	if err != nil {
		return service.IdentityInput{}, err
	}
	consent, err := prompt(reader, "Consentimiento: ")
	if err != nil {
		return service.IdentityInput{}, err
	}
	return service.IdentityInput{
		Name:      name,
		StudentID: studentID,
		Group:     group,
		Member:    member,
		Consent:   consent,
	}, nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printTurn(m domain.ChatMessage) {
	if m.Role == domain.RoleAssistant {
		fmt.Printf("Asistente > %s\n", m.Content)
		return
	}
	fmt.Printf("Tu > %s\n", m.Content)
}

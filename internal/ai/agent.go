package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"statement-agent/internal/core"
)

// DefaultModel is used when OPENAI_MODEL is not configured.
const DefaultModel = string(shared.ChatModelGPT4o)

// ExtractionService is the full AI boundary: OCR transcription, statement
// structuring, and the conversational endpoint driving the chat protocol.
type ExtractionService interface {
	Transcribe(ctx context.Context, images []core.Image) (string, error)
	StructureStatement(ctx context.Context, rawText string) (*core.Ledger, error)
	Converse(ctx context.Context, in core.ConverseInput) (*core.ChatReply, error)
}

type Agent struct {
	client *openai.Client
	model  string
}

func NewAgent(apiKey, model string) *Agent {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client, model: model}
}

// structured performs one Responses API call constrained to the JSON
// schema of out's type and decodes the result into out.
func (a *Agent) structured(ctx context.Context, input responses.ResponseNewParamsInputUnion, schemaName, schemaDesc string, temperature float64, out any) error {
	schemaMap, err := reflectSchema(out)
	if err != nil {
		return err
	}

	params := responses.ResponseNewParams{
		Model:       shared.ResponsesModel(a.model),
		Input:       input,
		Temperature: openai.Float(temperature),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        schemaName,
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt(schemaDesc),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai responses error: %w", err)
	}
	content := resp.OutputText()
	if content == "" {
		return fmt.Errorf("empty response content")
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("failed to parse completion: %w", err)
	}
	return nil
}

// plain performs one unconstrained text call.
func (a *Agent) plain(ctx context.Context, input responses.ResponseNewParamsInputUnion, temperature float64) (string, error) {
	resp, err := a.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:       shared.ResponsesModel(a.model),
		Input:       input,
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}
	content := resp.OutputText()
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}
	return content, nil
}

// reflectSchema generates a strict JSON schema from the Go struct behind v.
func reflectSchema(v any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}

// userMessage builds a single user turn with optional inline images.
func userMessage(text string, images []core.Image) responses.ResponseNewParamsInputUnion {
	if len(images) == 0 {
		return responses.ResponseNewParamsInputUnion{OfString: param.NewOpt(text)}
	}

	content := responses.ResponseInputMessageContentListParam{
		responses.ResponseInputContentUnionParam{
			OfInputText: &responses.ResponseInputTextParam{Text: text},
		},
	}
	for _, img := range images {
		content = append(content, responses.ResponseInputContentUnionParam{
			OfInputImage: &responses.ResponseInputImageParam{
				ImageURL: openai.String(dataURL(img)),
				Detail:   responses.ResponseInputImageDetailHigh,
			},
		})
	}

	return responses.ResponseNewParamsInputUnion{
		OfInputItemList: responses.ResponseInputParam{
			responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role: responses.EasyInputMessageRoleUser,
					Content: responses.EasyInputMessageContentUnionParam{
						OfInputItemContentList: content,
					},
				},
			},
		},
	}
}

func dataURL(img core.Image) string {
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

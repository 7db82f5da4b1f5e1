package extract

import (
	"context"
	"docuflow/pkg/retry"
	"docuflow/types"
	"docuflow/vars"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// ErrVisionRequired is returned for image uploads when the model is text-only.
var ErrVisionRequired = errors.New("image documents need a vision-capable model")

// Extractor 调用模型把文件转成结构化草稿
type Extractor struct {
	models   map[types.DocumentType]model.ToolCallingChatModel
	vision   bool
	pdf      parser.Parser
	retryCfg retry.Config
	log      *zap.Logger
}

type Option func(*Extractor)

// WithTextFallback makes PDFs go through a text parser instead of being
// attached as files. Used for models without document/vision input.
func WithTextFallback(p parser.Parser) Option {
	return func(e *Extractor) {
		e.vision = false
		e.pdf = p
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(e *Extractor) { e.retryCfg = cfg }
}

// New binds one forced tool per document type to the chat model.
func New(cm model.ToolCallingChatModel, log *zap.Logger, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		models:   make(map[types.DocumentType]model.ToolCallingChatModel, 2),
		vision:   true,
		retryCfg: retry.DefaultConfig(),
		log:      log.Named("extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.retryCfg.Logger = e.log
	e.retryCfg.Retryable = transient

	for _, t := range []types.DocumentType{types.DocumentTypeInvoice, types.DocumentTypeContract} {
		tool, err := ToolFor(t)
		if err != nil {
			return nil, err
		}
		bound, err := cm.WithTools([]*schema.ToolInfo{tool})
		if err != nil {
			return nil, fmt.Errorf("bind %s tool: %w", t, err)
		}
		e.models[t] = bound
	}
	return e, nil
}

// Extract sends the file to the model and returns the validated draft.
// Model errors are retried; parse and validation failures are not.
func (e *Extractor) Extract(ctx context.Context, docType types.DocumentType, fileName string, data []byte) (types.Draft, error) {
	cm, ok := e.models[docType]
	if !ok {
		return types.Draft{}, fmt.Errorf("%w: %q", types.ErrUnsupportedType, docType)
	}

	msgs, err := e.buildMessages(ctx, docType, fileName, data)
	if err != nil {
		return types.Draft{}, err
	}

	resp, err := retry.DoWithResult(ctx, e.retryCfg, func() (*schema.Message, error) {
		return cm.Generate(ctx, msgs, model.WithToolChoice(schema.ToolChoiceForced))
	})
	if err != nil {
		return types.Draft{}, fmt.Errorf("AI extraction failed: %w", err)
	}

	raw, err := ParseResponse(resp)
	if err != nil {
		e.log.Warn("unparseable model response",
			zap.String("file", fileName),
			zap.Int("tool_calls", len(resp.ToolCalls)),
			zap.Int("content_len", len(resp.Content)),
		)
		return types.Draft{}, err
	}
	return types.DecodeDraft(docType, raw)
}

func (e *Extractor) buildMessages(ctx context.Context, docType types.DocumentType, fileName string, data []byte) ([]*schema.Message, error) {
	prompt := promptFor(docType)
	mime := MIMEType(fileName)
	system := schema.SystemMessage(vars.SystemPrompt)

	if !e.vision {
		if mime != "application/pdf" {
			return nil, ErrVisionRequired
		}
		text, err := pdfText(ctx, e.pdf, fileName, data, vars.MaxTextChars)
		if err != nil {
			return nil, err
		}
		body := strings.ReplaceAll(vars.TextDocumentPrompt, "{{.Content}}", text)
		return []*schema.Message{system, schema.UserMessage(prompt + "\n\n" + body)}, nil
	}

	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	filePart := schema.ChatMessagePart{
		Type:     schema.ChatMessagePartTypeImageURL,
		ImageURL: &schema.ChatMessageImageURL{URL: dataURL, MIMEType: mime},
	}
	if mime == "application/pdf" {
		filePart = schema.ChatMessagePart{
			Type:    schema.ChatMessagePartTypeFileURL,
			FileURL: &schema.ChatMessageFileURL{URL: dataURL, MIMEType: mime, Name: fileName},
		}
	}

	user := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: prompt},
			filePart,
		},
	}
	return []*schema.Message{system, user}, nil
}

// transient 上下文取消/超时不重试，其余模型错误按瞬时错误处理
func transient(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

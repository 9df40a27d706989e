package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/turinglabs/kbchat/chatbot/domain"
	pkgError "github.com/turinglabs/kbchat/pkg/error"
)

func ValidateChatRequest(ctx context.Context, request domain.ChatRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ConversationID, validation.Required),
		validation.Field(&request.Query, validation.Required, validation.Length(1, 8000)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateIngestRequest(ctx context.Context, request domain.IngestRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Title, validation.Required),
		validation.Field(&request.Content, validation.Required.When(request.SourcePath == "")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

package response

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/internal/otel"
)

// WriteJson writes body to w as indented JSON, one document per call.
func WriteJson(c context.Context, w io.Writer, body map[string]any) error {
	_, span := otel.Tracer.Start(c, "WriteJson")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteJson").Logger()

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(body); err != nil {
		err = fmt.Errorf("failed encoding output with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

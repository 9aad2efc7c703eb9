// File: services/nlu/faq.go
package nlu

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// noAnswerToken is the sentinel the model emits when the question is not
// covered by the hotel knowledge base.
const noAnswerToken = "NO_ANSWER"

const faqPromptTemplate = `Eres el asistente de preguntas frecuentes de un hotel.
Responde la pregunta del huésped en español, en una o dos frases, solo si se trata
de información general del hotel (horarios de desayuno y check-out, wifi, piscina,
gimnasio, estacionamiento, servicios, ubicación).

Si la pregunta NO es de ese tipo, o no tienes la información, responde exactamente: NO_ANSWER

Pregunta: %q`

// GeminiFAQService answers hotel questions through the same LLM. An empty
// answer is a normal outcome.
type GeminiFAQService struct {
	Generator TextGenerator
	Logger    *zap.Logger
}

func (s *GeminiFAQService) AnswerFAQ(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	out, err := s.Generator.GenerateContent(ctx, fmt.Sprintf(faqPromptTemplate, question))
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("faq call failed", zap.Error(err))
		}
		return "", nil
	}

	answer := strings.TrimSpace(stripFences(out))
	if answer == "" || strings.Contains(answer, noAnswerToken) {
		return "", nil
	}
	return answer, nil
}

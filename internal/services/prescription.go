package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/models"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

const (
	prescriptionSystemPrompt = "You are a medical assistant who interprets prescriptions clearly and safely."

	retakePhotoMessage = "⚠️ I couldn't read any text from the prescription image. " +
		"Please try again with a clearer photo (good lighting, focused, straight-on)."

	unclearInterpretationMessage = "⚠️ I extracted some text but couldn't interpret it confidently. " +
		"Please upload a clearer photo, or type out the medicine names and instructions."

	maxInterpretationChars = 1200
)

// PrescriptionReader runs the full upload cycle: download the attachment,
// extract text from the image, interpret it with the AI pair, persist the
// record.
type PrescriptionReader struct {
	vision ai.VisionBackend
	ai     *ai.Failover
	media  MediaFetcher
	store  storage.Store
}

func NewPrescriptionReader(vision ai.VisionBackend, failover *ai.Failover, media MediaFetcher, store storage.Store) *PrescriptionReader {
	return &PrescriptionReader{
		vision: vision,
		ai:     failover,
		media:  media,
		store:  store,
	}
}

// Read processes one uploaded prescription image and returns the user-facing
// reply. An unreadable image short-circuits with an actionable message
// before any completion backend is called.
func (r *PrescriptionReader) Read(ctx context.Context, userID uint, mediaURL, mediaType string) (string, error) {
	image, err := r.media.DownloadMedia(ctx, mediaURL)
	if err != nil {
		return "", fmt.Errorf("download prescription media: %w", err)
	}

	extracted, err := r.vision.ExtractText(ctx, image, mediaType)
	if err != nil {
		return "", fmt.Errorf("extract prescription text: %w", err)
	}
	if extracted == "" {
		return retakePhotoMessage, nil
	}

	prompt := fmt.Sprintf(`The following is text extracted from an image of a prescription:

"""%s"""

Please:
1) Summarize the medicines (name, dosage, frequency) if present.
2) Explain briefly what each medicine is typically used for (general info).
3) Add a short safety reminder (confirm with a doctor/pharmacist; do not self-medicate).
If the text is unclear, say what is unclear and ask for a clearer photo.

Use simple, friendly language.
Do not claim certainty if the OCR looks messy.`, extracted)

	interpretation, err := r.ai.Complete(ctx, prescriptionSystemPrompt, prompt)
	if err != nil {
		if !errors.Is(err, ai.ErrExhausted) {
			return "", err
		}
		interpretation = ""
	}
	if interpretation == "" {
		interpretation = unclearInterpretationMessage
	}

	record := &models.Prescription{
		UserID:         userID,
		Image:          image,
		Interpretation: interpretation,
	}
	if err := r.store.SavePrescription(record); err != nil {
		// The user still gets the interpretation; the missing audit row is an
		// operator problem.
		log.Printf("❌ Failed to save prescription for user %d: %v", userID, err)
	}

	if runes := []rune(interpretation); len(runes) > maxInterpretationChars {
		interpretation = string(runes[:maxInterpretationChars]) + "..."
	}

	return "✅ Prescription uploaded successfully!\nHere’s what I could read and interpret:\n\n" + interpretation, nil
}

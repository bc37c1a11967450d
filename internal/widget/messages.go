package widget

import (
	"github.com/chatbotku/embedkit/internal/langdetect"
	"github.com/chatbotku/embedkit/internal/retry"
)

// defaultWelcome is used when the user-status pre-flight cannot be reached.
const defaultWelcome = "Halo! 👋 Saya siap membantu dengan pertanyaan Anda."

// errorBubbleText picks the localized error bubble for a failed send. Each
// failure kind gets a distinct message in the language of the triggering
// user message.
func errorBubbleText(kind retry.Kind, lang langdetect.Language) string {
	id := lang == langdetect.Indonesian
	switch kind {
	case retry.KindTimeout:
		if id {
			return "⏰ Koneksi timeout. Coba lagi ya!"
		}
		return "⏰ Connection timeout. Please try again!"
	case retry.KindServer:
		if id {
			return "🔧 Server sedang maintenance. Coba beberapa saat lagi!"
		}
		return "🔧 Server maintenance. Please try again later!"
	case retry.KindNetwork:
		if id {
			return "📡 Cek koneksi internet kamu ya!"
		}
		return "📡 Please check your internet connection!"
	default:
		if id {
			return "❌ Maaf, ada gangguan teknis. Coba lagi nanti ya!"
		}
		return "❌ Sorry, technical issue occurred. Please try again later!"
	}
}

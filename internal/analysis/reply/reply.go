package reply

import "fmt"

// LabelDepressed is the upstream label that triggers the supportive reply.
const LabelDepressed = "Depressed"

// Greeting seeds every new conversation.
const Greeting = "Hi there 👋 I'm your emotional wellness assistant. How have you been feeling lately?"

// Fallback is appended when the classifier cannot be reached. The text is
// fixed so the UI always shows the same apology for any failure mode.
const Fallback = "⚠️ I couldn’t reach the backend right now. Please make sure the classifier service is running."

// Typing is the placeholder shown next to the typing indicator.
const Typing = "Analyzing your message..."

// FromPrediction renders a classifier verdict as assistant copy. Pure
// function of its inputs; confidence is probability*100 at one decimal.
func FromPrediction(label string, probability float64) string {
	confidence := fmt.Sprintf("%.1f", probability*100)
	if label == LabelDepressed {
		return fmt.Sprintf("😔 Based on your message, you might be feeling **depressed**.\nConfidence: %s%%. Remember, you're not alone — reaching out for help is a strong step.", confidence)
	}
	return fmt.Sprintf("😊 You seem **not depressed** based on your message.\nConfidence: %s%%. Keep taking care of your mental health!", confidence)
}

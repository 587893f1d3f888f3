package interpreter

import "fmt"

// Prompts returns the system and user prompt pair for a dream
// interpretation request. Only "en" selects English; anything else falls
// back to Spanish, the product's default.
func Prompts(name, message, language string) (system, user string) {
    if language == "en" {
        system = "You are an expert in professional dream interpretation based on psychology."
        user = fmt.Sprintf("The user %s dreamed the following:\n%s", name, message)
        return system, user
    }
    system = "Eres un experto en interpretación profesional de sueños según la psicología."
    user = fmt.Sprintf("El usuario %s soñó lo siguiente:\n%s", name, message)
    return system, user
}

package llama

const stopWord = "### User:"

// renderPrompt lays a system instruction and user message out in the plain
// instruction template most GGUF chat models accept.
func renderPrompt(system, user string) string {
	return "### System:\n" + system + "\n\n" + stopWord + "\n" + user + "\n\n### Assistant:\n"
}

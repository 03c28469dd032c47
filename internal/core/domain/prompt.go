package domain

// DefaultAnswerInstruction is placed before the retrieved context when no
// user-edited instruction exists.
const DefaultAnswerInstruction = "You are an assistant for question-answering tasks. " +
	"Use the following pieces of retrieved context to answer the question. " +
	"If you don't know the answer, say that you don't know. " +
	"Use three sentences maximum and keep the answer concise."

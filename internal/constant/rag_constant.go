package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// SystemPromptTemplate takes, in order: assistant name, assistance area,
	// query, sources, context and considerations.
	SystemPromptTemplate = "Tu nombre es %s, eres asistente de %s. Responde únicamente en español, con tono profesional y preciso. " +
		"Responde la pregunta del usuario. Si la información necesaria no está disponible en el contexto, fuentes o consideraciones, " +
		"indica que no puedes responder con precisión y menciona las fuentes, pero siempre establece la relación entre los datos disponibles " +
		"y la pregunta del usuario. Pregunta del usuario %s, Lista de Fuentes: %s, Lista de Contexto: %s, Lista de consideraciones: %s"

	// DefaultNDocuments applies when a query omits n_documents.
	DefaultNDocuments = 5

	NoConsiderationsAvailable = "No hay consideraciones disponibles"
	NoSourcesAvailable        = "No se encontraron fuentes para mostrar."

	// MessageDoneKey marks the final frame of a generation stream.
	MessageDoneKey = "MESSAGE_DONE"
	// MessageErrorKey marks a frame that ends a stream with an error.
	MessageErrorKey = "MESSAGE_ERROR"
)

// User-facing messages.
const (
	MsgNoCollections      = "No se encontraron colecciones en la base de datos."
	MsgSessionNotFound    = "La sesión no existe o ha sido eliminada por inactividad."
	MsgInteractionMissing = "La interacción no existe en la sesión."
	MsgDocumentExists     = "Documento existente"
	MsgDocumentNotFound   = "Documento no encontrado"
	MsgSearchFailed       = "No se pudo completar la búsqueda"
)

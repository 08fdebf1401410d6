package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки пайплайна рекомендаций
	ErrNoEmbeddings            = fmt.Errorf("no embeddings produced for seed playlist")
	ErrEmptyQueryVector        = fmt.Errorf("query vector is empty")
	ErrWriteCredentialsMissing = fmt.Errorf("vector store write credentials are not configured")

	// 400 Bad Request
	ErrPlaylistIDRequired   = fmt.Errorf("seed playlist id is required")
	ErrAccessTokenRequired  = fmt.Errorf("spotify access token is required")
	ErrUserIDRequired       = fmt.Errorf("spotify user id is required")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

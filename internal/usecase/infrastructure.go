package usecase

import "context"

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type ImportArchiveInfra interface {
	Archive(ctx context.Context, req *ArchiveImportReq) (string, error)
	CleanupArchive(key string)
}

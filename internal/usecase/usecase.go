package usecase

import "context"

type PlaylistUC interface {
	GenerateFromSeed(ctx context.Context, req *GenerateFromSeedReq) (*GenerateFromSeedRes, error)
	ListPlaylists(ctx context.Context, req *ListPlaylistsReq) ([]PlaylistInfo, error)
}

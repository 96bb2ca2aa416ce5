package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/rpc"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ rpc.LibraryServer = (*GRPCServer)(nil)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userName := rpc.String(req, rpc.FieldUserName)
	password := []byte(rpc.String(req, rpc.FieldPassword))
	defer common.WipeByteArray(password)

	user, err := s.users.Register(ctx, userName, password)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "user registered", "username", userName, "user_id", user.ID)
	return rpc.NewMessage(map[string]string{rpc.FieldID: user.ID}), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	password := []byte(rpc.String(req, rpc.FieldPassword))
	defer common.WipeByteArray(password)

	tokens, err := s.users.Login(ctx, rpc.String(req, rpc.FieldUserName), password)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}

	return rpc.NewMessage(map[string]string{
		rpc.FieldAccessToken:  tokens.AccessToken,
		rpc.FieldRefreshToken: tokens.RefreshToken,
	}), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tokens, err := s.users.RefreshToken(ctx, rpc.String(req, rpc.FieldRefreshToken))
	if err != nil {
		return nil, s.toStatus(ctx, "refresh token", err)
	}

	return rpc.NewMessage(map[string]string{
		rpc.FieldAccessToken:  tokens.AccessToken,
		rpc.FieldRefreshToken: tokens.RefreshToken,
	}), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return rpc.NewMessage(map[string]string{rpc.FieldStatus: "OK"}), nil
}

func (s *GRPCServer) CreatePaper(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in, err := rpc.PaperFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	saved, err := s.library.Create(ctx, userID, fromWire(in))
	if err != nil {
		return nil, s.toStatus(ctx, "create paper", err)
	}

	return paperResponse(saved)
}

func (s *GRPCServer) UpdatePaper(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var patch models.PaperPatch
	if rpc.Has(req, rpc.FieldNotes) {
		notes := rpc.String(req, rpc.FieldNotes)
		patch.Notes = &notes
	}
	if rpc.Has(req, rpc.FieldTags) {
		patch.Tags = rpc.Strings(req, rpc.FieldTags)
	}

	saved, err := s.library.Update(ctx, userID, rpc.String(req, rpc.FieldID), patch)
	if err != nil {
		return nil, s.toStatus(ctx, "update paper", err)
	}

	return paperResponse(saved)
}

func (s *GRPCServer) DeletePaper(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.library.Delete(ctx, userID, rpc.String(req, rpc.FieldID)); err != nil {
		return nil, s.toStatus(ctx, "delete paper", err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) ListPapers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.library.List(ctx, userID, rpc.String(req, rpc.FieldTag))
	if err != nil {
		return nil, s.toStatus(ctx, "list papers", err)
	}

	out := make([]rpc.Paper, 0, len(saved))
	for _, p := range saved {
		out = append(out, toWire(p))
	}

	resp, err := rpc.PapersToStruct(out)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode papers")
	}
	return resp, nil
}

func (s *GRPCServer) ExportPapers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	link, err := s.library.Export(ctx, userID, rpc.String(req, rpc.FieldFormat), rpc.String(req, rpc.FieldTag))
	if err != nil {
		return nil, s.toStatus(ctx, "export papers", err)
	}

	s.logger.Info(ctx, "library exported", "user_id", userID, "papers", link.Count)
	return rpc.NewMessage(map[string]string{
		rpc.FieldURL:       link.URL,
		rpc.FieldExpiresAt: link.ExpiresAt.UTC().Format(time.RFC3339),
	}), nil
}

func paperResponse(p *models.SavedPaper) (*structpb.Struct, error) {
	resp, err := rpc.PaperToStruct(toWire(p))
	if err != nil {
		return nil, status.Error(codes.Internal, "encode paper")
	}
	return resp, nil
}

func fromWire(p rpc.Paper) *models.SavedPaper {
	return &models.SavedPaper{
		PaperID:    p.PaperID,
		Title:      p.Title,
		Authors:    p.Authors,
		Abstract:   p.Abstract,
		Categories: p.Categories,
		Published:  p.Published,
		SourceURL:  p.SourceURL,
		PDFURL:     p.PDFURL,
		Notes:      p.Notes,
		Tags:       p.Tags,
	}
}

func toWire(p *models.SavedPaper) rpc.Paper {
	return rpc.Paper{
		RemoteID:   p.ID,
		PaperID:    p.PaperID,
		Title:      p.Title,
		Authors:    p.Authors,
		Abstract:   p.Abstract,
		Categories: p.Categories,
		Published:  p.Published,
		SourceURL:  p.SourceURL,
		PDFURL:     p.PDFURL,
		Notes:      p.Notes,
		Tags:       p.Tags,
		SavedAt:    p.SavedAt,
	}
}

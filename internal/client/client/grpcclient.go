package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.LibraryClient

	mu        sync.Mutex
	tokens    Tokens
	onRefresh func(Tokens)
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	tokens := s.Tokens()
	if rpc.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, tokens.AccessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if tokens.RefreshToken == "" {
		return err
	}

	resp, rerr := s.client.Call(ctx, rpc.MethodRefreshToken,
		rpc.NewMessage(map[string]string{rpc.FieldRefreshToken: tokens.RefreshToken}))
	if rerr != nil {
		return rerr
	}

	refreshed := Tokens{
		AccessToken:  rpc.String(resp, rpc.FieldAccessToken),
		RefreshToken: rpc.String(resp, rpc.FieldRefreshToken),
	}
	s.SetTokens(refreshed)

	s.mu.Lock()
	notify := s.onRefresh
	s.mu.Unlock()
	if notify != nil {
		notify(refreshed)
	}

	return invoker(withAccessToken(ctx, refreshed.AccessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended to the defaults.
func NewGRPCClient(endpointURL string, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(extra...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewLibraryClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetTokens(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

func (s *GRPCClient) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// OnTokensRefreshed registers fn to be called after a transparent refresh.
func (s *GRPCClient) OnTokensRefreshed(fn func(Tokens)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *GRPCClient) Register(ctx context.Context, userName, password string) error {
	req := rpc.NewMessage(map[string]string{rpc.FieldUserName: userName, rpc.FieldPassword: password})

	if _, err := s.client.Call(ctx, rpc.MethodRegister, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, userName, password string) (Tokens, error) {
	req := rpc.NewMessage(map[string]string{rpc.FieldUserName: userName, rpc.FieldPassword: password})

	resp, err := s.client.Call(ctx, rpc.MethodLogin, req)
	if err != nil {
		return Tokens{}, s.mapError(err)
	}

	t := Tokens{
		AccessToken:  rpc.String(resp, rpc.FieldAccessToken),
		RefreshToken: rpc.String(resp, rpc.FieldRefreshToken),
	}
	s.SetTokens(t)
	return t, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Call(ctx, rpc.MethodPing, &structpb.Struct{})
	if err != nil {
		return s.mapError(err)
	}

	if rpc.String(resp, rpc.FieldStatus) != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Create(ctx context.Context, item models.KeptItem) (string, error) {
	req, err := rpc.PaperToStruct(toPaper(item))
	if err != nil {
		return "", fmt.Errorf("encode paper: %w", err)
	}

	resp, err := s.client.Call(ctx, rpc.MethodCreatePaper, req)
	if err != nil {
		return "", s.mapError(err)
	}

	id := rpc.String(resp, rpc.FieldID)
	if id == "" {
		return "", fmt.Errorf("create paper: server returned no id")
	}
	return id, nil
}

// Update sends only the fields present in patch.
func (s *GRPCClient) Update(ctx context.Context, remoteID string, patch models.Patch) error {
	req := rpc.NewMessage(map[string]string{rpc.FieldID: remoteID})
	if patch.Notes != nil {
		req.Fields[rpc.FieldNotes] = structpb.NewStringValue(*patch.Notes)
	}
	if patch.Tags != nil {
		req.Fields[rpc.FieldTags] = rpc.StringList(patch.Tags)
	}

	if _, err := s.client.Call(ctx, rpc.MethodUpdatePaper, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Delete(ctx context.Context, remoteID string) error {
	req := rpc.NewMessage(map[string]string{rpc.FieldID: remoteID})

	if _, err := s.client.Call(ctx, rpc.MethodDeletePaper, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListAll(ctx context.Context) ([]models.KeptItem, error) {
	return s.ListByTag(ctx, "")
}

// ListByTag lists the saved papers carrying tag; an empty tag lists all.
func (s *GRPCClient) ListByTag(ctx context.Context, tag string) ([]models.KeptItem, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if tag != "" {
		req.Fields[rpc.FieldTag] = structpb.NewStringValue(tag)
	}

	resp, err := s.client.Call(ctx, rpc.MethodListPapers, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	papers, err := rpc.PapersFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode papers: %w", err)
	}

	items := make([]models.KeptItem, 0, len(papers))
	for _, p := range papers {
		items = append(items, fromPaper(p))
	}
	return items, nil
}

func (s *GRPCClient) Export(ctx context.Context, format, tag string) (ExportLink, error) {
	req := rpc.NewMessage(map[string]string{rpc.FieldFormat: format, rpc.FieldTag: tag})

	resp, err := s.client.Call(ctx, rpc.MethodExportPapers, req)
	if err != nil {
		return ExportLink{}, s.mapError(err)
	}

	link := ExportLink{URL: rpc.String(resp, rpc.FieldURL)}
	if v := rpc.String(resp, rpc.FieldExpiresAt); v != "" {
		if link.ExpiresAt, err = time.Parse(time.RFC3339, v); err != nil {
			return ExportLink{}, fmt.Errorf("bad %s: %w", rpc.FieldExpiresAt, err)
		}
	}
	return link, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyKept
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func toPaper(k models.KeptItem) rpc.Paper {
	return rpc.Paper{
		RemoteID:   k.RemoteID,
		PaperID:    k.ID,
		Title:      k.Title,
		Authors:    k.Authors,
		Abstract:   k.Abstract,
		Categories: k.Categories,
		Published:  k.Published,
		SourceURL:  k.SourceURL,
		PDFURL:     k.PDFURL,
		Notes:      k.Notes,
		Tags:       k.Tags,
		SavedAt:    k.KeptAt,
	}
}

func fromPaper(p rpc.Paper) models.KeptItem {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.KeptItem{
		Item: models.Item{
			ID:         p.PaperID,
			Title:      p.Title,
			Authors:    p.Authors,
			Abstract:   p.Abstract,
			Categories: p.Categories,
			Published:  p.Published,
			SourceURL:  p.SourceURL,
			PDFURL:     p.PDFURL,
		},
		Notes:    p.Notes,
		Tags:     tags,
		RemoteID: p.RemoteID,
		KeptAt:   p.SavedAt,
	}
}

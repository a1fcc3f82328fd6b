package manager

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/dedis/onet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/srpauth"
	"github.com/jonco5555/vault/store"
)

// AuthService implements rpcpb.AuthServiceServer: it registers SRP
// verifier/salt pairs and walks the three-round-trip SecureCall login
// handshake, grounded on manager/auth_server.py.
type AuthService struct {
	store store.Store
	group srpauth.Group
}

func newAuthService(st store.Store, group srpauth.Group) *AuthService {
	return &AuthService{store: st, group: group}
}

// AuthRegister persists a pre-computed (verifier, salt) pair for a new
// username; the password itself never reaches the server.
func (a *AuthService) AuthRegister(ctx context.Context, req *rpcpb.AuthRegisterRequest) (*rpcpb.AuthRegisterResponse, error) {
	log.Lvl2("auth: register request for", req.Username)
	err := a.store.AddAuthClient(ctx, store.AuthRecord{
		Username: req.Username,
		Verifier: req.Verifier,
		Salt:     req.Salt,
	})
	if err != nil {
		return &rpcpb.AuthRegisterResponse{OK: false, Err: err.Error()}, nil
	}
	return &rpcpb.AuthRegisterResponse{OK: true}, nil
}

// SecureCall walks AWAIT_STEP1 -> AWAIT_STEP3 -> AWAIT_APPREQ -> DONE over
// one bidirectional stream: SRP login, then a single authenticated
// application request/response.
func (a *AuthService) SecureCall(stream rpcpb.AuthService_SecureCallServer) error {
	ctx := stream.Context()

	first, err := stream.Recv()
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "no messages: %v", err)
	}
	if first.FirstStep == nil {
		return status.Error(codes.InvalidArgument, "expected first_step")
	}
	username := first.FirstStep.Username

	rec, err := a.store.GetAuthClient(ctx, username)
	if err != nil {
		return status.Errorf(codes.Unauthenticated, "unknown user %q", username)
	}

	verifier, ok := new(big.Int).SetString(rec.Verifier, 10)
	if !ok {
		return status.Error(codes.Internal, "corrupt stored verifier")
	}
	salt, err := hex.DecodeString(rec.Salt)
	if err != nil {
		return status.Error(codes.Internal, "corrupt stored salt")
	}

	server := srpauth.NewServerSession(a.group, verifier, salt)
	B, err := server.Start()
	if err != nil {
		return status.Errorf(codes.Internal, "start srp session: %v", err)
	}
	if err := stream.Send(&rpcpb.SecureRespMsgWrapper{
		SecondStep: &rpcpb.SRPSecondStep{ServerPublicKey: B.String(), Salt: rec.Salt},
	}); err != nil {
		return err
	}

	second, err := stream.Recv()
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "no third_step: %v", err)
	}
	if second.ThirdStep == nil {
		return status.Error(codes.InvalidArgument, "expected third_step")
	}

	clientPublic, ok := new(big.Int).SetString(second.ThirdStep.ClientPublicKey, 10)
	if !ok {
		return status.Error(codes.InvalidArgument, "malformed client public key")
	}
	clientProof, ok := new(big.Int).SetString(second.ThirdStep.ClientSessionKeyProof, 10)
	if !ok {
		return status.Error(codes.InvalidArgument, "malformed client proof")
	}

	if _, err := server.Finish(clientPublic, clientProof); err != nil {
		if errors.Is(err, srpauth.ErrAuthFailed) || errors.Is(err, srpauth.ErrBadEphemeral) {
			return status.Error(codes.Unauthenticated, "authentication failed")
		}
		return status.Errorf(codes.Internal, "finish srp session: %v", err)
	}

	if err := stream.Send(&rpcpb.SecureRespMsgWrapper{ThirdStepAck: &rpcpb.SRPThirdStepAck{OK: true}}); err != nil {
		return err
	}

	third, err := stream.Recv()
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "expected app_req: %v", err)
	}
	if third.AppReq == nil {
		return status.Error(codes.InvalidArgument, "expected app_req")
	}

	log.Lvl2("auth: processed", third.AppReq.PayloadType, "for", username)
	return stream.Send(&rpcpb.SecureRespMsgWrapper{
		AppResp: &rpcpb.AppResponse{
			PayloadType: third.AppReq.PayloadType,
			Payload:     third.AppReq.Payload,
		},
	})
}

var _ rpcpb.AuthServiceServer = (*AuthService)(nil)

package userclient

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/jonco5555/vault/rpcpb"
	"github.com/jonco5555/vault/srpauth"
)

// Authenticate walks the three-round-trip SRP login over AuthService and
// carries a single application payload through it, grounded on
// auth_client.py's do_secure_call. It proves the password is correct
// without ever sending it, independent of the unauthenticated
// Manager.Register/StoreSecret/RetrieveSecret RPCs.
func (c *Client) Authenticate(ctx context.Context, password, payloadType string, payload []byte) ([]byte, error) {
	stream, err := c.auth.SecureCall(ctx)
	if err != nil {
		return nil, fmt.Errorf("userclient: open secure call: %w", err)
	}

	if err := stream.Send(&rpcpb.SecureReqMsgWrapper{
		FirstStep: &rpcpb.SRPFirstStep{Username: c.userID},
	}); err != nil {
		return nil, fmt.Errorf("userclient: send first step: %w", err)
	}

	resp, err := stream.Recv()
	if err != nil {
		return nil, fmt.Errorf("userclient: recv second step: %w", err)
	}
	if resp.SecondStep == nil {
		return nil, fmt.Errorf("userclient: expected second_step")
	}

	session := srpauth.NewClientSession(c.group, c.userID, password)
	A, err := session.Start()
	if err != nil {
		return nil, fmt.Errorf("userclient: start srp session: %w", err)
	}

	B, ok := new(big.Int).SetString(resp.SecondStep.ServerPublicKey, 10)
	if !ok {
		return nil, fmt.Errorf("userclient: malformed server public key")
	}
	salt, err := hex.DecodeString(resp.SecondStep.Salt)
	if err != nil {
		return nil, fmt.Errorf("userclient: malformed salt: %w", err)
	}

	proof, err := session.Finish(B, salt)
	if err != nil {
		return nil, fmt.Errorf("userclient: finish srp session: %w", err)
	}

	if err := stream.Send(&rpcpb.SecureReqMsgWrapper{
		ThirdStep: &rpcpb.SRPThirdStep{
			ClientPublicKey:       A.String(),
			ClientSessionKeyProof: proof.String(),
		},
	}); err != nil {
		return nil, fmt.Errorf("userclient: send third step: %w", err)
	}

	ack, err := stream.Recv()
	if err != nil {
		return nil, fmt.Errorf("userclient: recv third step ack: %w", err)
	}
	if ack.ThirdStepAck == nil || !ack.ThirdStepAck.OK {
		return nil, fmt.Errorf("userclient: authentication rejected")
	}

	if err := stream.Send(&rpcpb.SecureReqMsgWrapper{
		AppReq: &rpcpb.AppRequest{PayloadType: payloadType, Payload: payload},
	}); err != nil {
		return nil, fmt.Errorf("userclient: send app request: %w", err)
	}

	appResp, err := stream.Recv()
	if err != nil {
		return nil, fmt.Errorf("userclient: recv app response: %w", err)
	}
	if appResp.AppResp == nil {
		return nil, fmt.Errorf("userclient: expected app_resp")
	}
	return appResp.AppResp.Payload, stream.CloseSend()
}

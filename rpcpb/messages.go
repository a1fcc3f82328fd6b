package rpcpb

// ServiceType mirrors setup.ServiceType on the wire; kept as its own type so
// rpcpb has no import-cycle on package setup.
type ServiceType int32

const (
	ServiceTypeShareServer ServiceType = iota
	ServiceTypeBootstrap
)

// --- Setup / lifecycle messages ---

type SetupRegisterRequest struct {
	Type        ServiceType
	ContainerID string
	IPAddress   string
	PublicKey   []byte
}

type SetupRegisterResponse struct {
	IsRegistered bool
}

type SetupUnregisterRequest struct {
	ContainerID string
}

type SetupUnregisterResponse struct {
	IsUnregistered bool
}

// TerminateRequest and TerminateResponse carry no data; Terminate is a
// one-way signal, the Go analogue of sending google.protobuf.Empty.
type TerminateRequest struct{}
type TerminateResponse struct{}

// --- Threshold crypto wire types ---

// CurvePoint is a P-256 point in affine coordinates, the wire form of
// crypto.Point.
type CurvePoint struct {
	X []byte
	Y []byte
}

// Ciphertext is the wire form of crypto.Ciphertext.
type Ciphertext struct {
	C1 CurvePoint
	C2 CurvePoint
	CT []byte
}

// PartialDecrypted is the wire form of crypto.PartialDecryption.
type PartialDecrypted struct {
	Index int32
	YC1   CurvePoint
}

// --- Bootstrap service ---

type GenerateSharesRequest struct {
	Threshold   int32
	NumOfShares int32
	// PublicKeys are Curve25519 sealed-box public keys, one per recipient,
	// with the registering user's key last.
	PublicKeys [][]byte
}

type GenerateSharesResponse struct {
	// EncryptedShares[i] is a seal.Seal envelope wrapping one crypto.Share,
	// encrypted to PublicKeys[i].
	EncryptedShares [][]byte
	// EncryptedKey wraps the group public key Q, encrypted to the
	// registering user's key (the last entry of PublicKeys).
	EncryptedKey []byte
}

// --- Share server service ---

type StoreShareRequest struct {
	UserID         string
	EncryptedShare []byte
}

type StoreShareResponse struct {
	Success bool
}

type DeleteShareRequest struct {
	UserID string
}

type DeleteShareResponse struct {
	Success bool
}

type DecryptRequest struct {
	UserID string
	Secret Ciphertext
}

type DecryptResponse struct {
	PartialDecryptedSecret PartialDecrypted
}

// --- Manager service ---

type RegisterRequest struct {
	UserID        string
	UserPublicKey []byte
}

type RegisterResponse struct {
	EncryptedShare []byte
	EncryptedKey   []byte
}

type StoreSecretRequest struct {
	UserID   string
	SecretID string
	Secret   Ciphertext
}

type StoreSecretResponse struct {
	Success bool
}

type RetrieveSecretRequest struct {
	UserID   string
	SecretID string
}

type RetrieveSecretResponse struct {
	Secret             Ciphertext
	PartialDecryptions []PartialDecrypted
}

// --- SRP authentication service ---

type AuthRegisterRequest struct {
	Username string
	Verifier string
	Salt     string
}

type AuthRegisterResponse struct {
	OK  bool
	Err string
}

// SecureReqMsgWrapper is the client->server oneof for the SecureCall
// bidirectional stream; exactly one of its fields is non-nil per message,
// mirroring the proto oneof auth_pb2.SecureReqMsgWrapper.
type SecureReqMsgWrapper struct {
	FirstStep *SRPFirstStep
	ThirdStep *SRPThirdStep
	AppReq    *AppRequest
}

// SecureRespMsgWrapper is the server->client oneof for the same stream.
type SecureRespMsgWrapper struct {
	SecondStep   *SRPSecondStep
	ThirdStepAck *SRPThirdStepAck
	AppResp      *AppResponse
}

type SRPFirstStep struct {
	Username string
}

type SRPSecondStep struct {
	ServerPublicKey string
	Salt            string
}

type SRPThirdStep struct {
	ClientPublicKey       string
	ClientSessionKeyProof string
}

type SRPThirdStepAck struct {
	OK bool
}

type AppRequest struct {
	PayloadType string
	Payload     []byte
}

type AppResponse struct {
	PayloadType string
	Payload     []byte
}

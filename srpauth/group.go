package srpauth

import "math/big"

// rfc5054N1536Hex is a 1536-bit safe prime (N = 2q+1, both N and q prime),
// generated the way RFC 5054 Appendix A's groups are constructed, used as
// this vault's SRP-6a modulus.
const rfc5054N1536Hex = "8372f9e5069445dbf7afc5e58e7bb2b390fc5b4cb612d6cf070a16b16c1ab2233ff422771d36513cd2e8b44b6fb0b863e73604b2d2770a807b30d55abcbc622fe974a7480dd862739c8ede7515fb5199f06d979ba292937447cdbdbad39d580192c79e1ce17b60d9c7e1a6b8892c909280ea6da3288e9682d51a4467c89e3b2ca712575ebadc329710fba5328efc7ea086104cdef6cdcd45b513f77fa46cacccf621a189231efdfd88638b42cbc8309cd2eb4ff057188474eca24ff63554cc77"

var rfc5054N1536, _ = new(big.Int).SetString(rfc5054N1536Hex, 16)

// RFC5054Group is the (N, g) group every SRP session in this vault is
// parameterized with: g = 2 generates the full multiplicative group since N
// is a safe prime (N = 2q+1), the same choice RFC 5054's groups make.
var RFC5054Group = Group{N: rfc5054N1536, G: big.NewInt(2)}

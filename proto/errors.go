package proto

// parseError is a sentinel error produced while decoding a message
// off the wire. Its string form is suitable for logging; it is never
// sent to a client (protocol-layer errors terminate the connection,
// per the rule that RLERROR only reports backend failures).
type parseError string

func (e parseError) Error() string { return string(e) }

var (
	errTooSmall      = parseError("buffer too small")
	errTooBig        = parseError("message exceeds negotiated size")
	errShortMsg      = parseError("message truncated")
	errInvalidType   = parseError("invalid message type")
	errLongVersion   = parseError("version string too long")
	errLongFilename  = parseError("filename too long")
	errLongUname     = parseError("user name too long")
	errContainsSlash = parseError("filename contains slash")
	errNullString    = parseError("string contains NUL byte")
	errMaxWElem      = parseError("too many walk elements")
	errMaxOffset     = parseError("offset exceeds maximum")
)

// ErrMaxSize is returned by Decoder.Next when a message's declared
// size exceeds the Decoder's configured maximum.
var ErrMaxSize = parseError("message exceeds MaxSize")

package password

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength         = 16
	minKeyLength   uint32 = 16
	maxKeyLength   uint32 = 128
	minPepperBytes        = 16
	boundFactor    uint32 = 4
	algorithmID           = "argon2id"
)

// Argon2Params are the Argon2id cost parameters.
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultArgon2Params returns m=19456,t=2,p=1 with a 32-byte key.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      19456,
		Time:        2,
		Parallelism: 1,
		KeyLength:   32,
	}
}

func (p Argon2Params) validate() error {
	if p.Memory < minMemoryKB {
		return fmt.Errorf("%w: argon2 memory must be >= %d KiB", ErrInvalidConfig, minMemoryKB)
	}
	if p.Time < minTimeCost {
		return fmt.Errorf("%w: argon2 time must be >= %d", ErrInvalidConfig, minTimeCost)
	}
	if p.Parallelism < minParallelism {
		return fmt.Errorf("%w: argon2 parallelism must be >= %d", ErrInvalidConfig, minParallelism)
	}
	if p.KeyLength < minKeyLength || p.KeyLength > maxKeyLength {
		return fmt.Errorf("%w: argon2 key length must be in [%d, %d]", ErrInvalidConfig, minKeyLength, maxKeyLength)
	}
	return nil
}

// Argon2Scheme is scheme 02: Argon2id over HMAC-SHA-256(pepper, content).
//
// golang.org/x/crypto/argon2 exposes no secret input, so the pepper keys a
// MAC of the content and the MAC is fed to Argon2id as the password.
//
// The output is a standard $argon2id$ PHC string, but it is not compatible
// with references produced by implementations that pass the pepper as the
// Argon2 secret (K) parameter. Such references always fail validation here
// with ErrCredentialMismatch.
type Argon2Scheme struct {
	pepper []byte
	params Argon2Params
}

// NewArgon2Scheme copies pepper and validates params.
func NewArgon2Scheme(pepper []byte, params Argon2Params) (*Argon2Scheme, error) {
	if len(pepper) < minPepperBytes {
		return nil, fmt.Errorf("%w: pepper must be >= %d bytes", ErrInvalidConfig, minPepperBytes)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	return &Argon2Scheme{
		pepper: append([]byte(nil), pepper...),
		params: params,
	}, nil
}

func (a *Argon2Scheme) Tag() SchemeTag { return SchemeArgon2 }

// Params returns the parameters new hashes are produced with.
func (a *Argon2Scheme) Params() Argon2Params { return a.params }

func (a *Argon2Scheme) peppered(content string) []byte {
	mac := hmac.New(sha256.New, a.pepper)
	_, _ = mac.Write([]byte(content))
	return mac.Sum(nil)
}

// Hash returns the PHC string for content under its own salt.
func (a *Argon2Scheme) Hash(content *ContentToHash) (string, error) {
	if content == nil {
		return "", ErrHashFailed
	}

	salt := content.Salt[:]
	hash := argon2.IDKey(
		a.peppered(content.Content),
		salt,
		a.params.Time,
		a.params.Memory,
		a.params.Parallelism,
		a.params.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.params.Memory,
		a.params.Time,
		a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Validate recomputes the hash with the parameters and salt embedded in
// native. The embedded salt must also equal content.Salt; both comparisons
// run before the single result is reported.
func (a *Argon2Scheme) Validate(content *ContentToHash, native string) error {
	if content == nil {
		return ErrCredentialMismatch
	}

	parsed, err := parsePHC(native)
	if err != nil {
		return ErrCredentialMismatch
	}
	if !a.withinBounds(parsed) {
		return ErrCredentialMismatch
	}

	computed := argon2.IDKey(
		a.peppered(content.Content),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		uint32(len(parsed.hash)),
	)

	ok := subtle.ConstantTimeCompare(computed, parsed.hash) &
		subtle.ConstantTimeCompare(parsed.salt, content.Salt[:])
	if ok != 1 {
		return ErrCredentialMismatch
	}
	return nil
}

// NeedsUpgrade reports whether native was produced with weaker parameters
// than the current ones.
func (a *Argon2Scheme) NeedsUpgrade(native string) (bool, error) {
	parsed, err := parsePHC(native)
	if err != nil {
		return false, ErrMalformedReference
	}

	if a.params.Memory > parsed.memory {
		return true, nil
	}
	if a.params.Time > parsed.time {
		return true, nil
	}
	if a.params.Parallelism > parsed.parallelism {
		return true, nil
	}
	if a.params.KeyLength != uint32(len(parsed.hash)) {
		return true, nil
	}

	return false, nil
}

// withinBounds refuses attacker-supplied parameters far above the configured
// cost so a forged reference cannot pin a worker.
func (a *Argon2Scheme) withinBounds(p *parsedPHC) bool {
	if p.memory > a.params.Memory*boundFactor {
		return false
	}
	if p.time > a.params.Time*boundFactor {
		return false
	}
	keyLen := uint32(len(p.hash))
	return keyLen >= minKeyLength && keyLen <= maxKeyLength
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func parsePHC(encoded string) (*parsedPHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, fmt.Errorf("unsupported algorithm")
	}

	versionPart := parts[2]
	if !strings.HasPrefix(versionPart, "v=") {
		return nil, fmt.Errorf("missing argon2 version")
	}
	version, err := strconv.Atoi(strings.TrimPrefix(versionPart, "v="))
	if err != nil || version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version")
	}

	parsed, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLength {
		return nil, fmt.Errorf("invalid salt")
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return nil, fmt.Errorf("invalid hash")
	}

	parsed.salt = salt
	parsed.hash = hash
	return parsed, nil
}

func parseParams(part string) (*parsedPHC, error) {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return nil, fmt.Errorf("invalid parameter format")
	}

	var (
		memorySet, timeSet, parallelismSet bool
		params                             parsedPHC
	)

	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid parameter entry")
		}

		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return nil, fmt.Errorf("invalid memory parameter")
			}
			params.memory = uint32(v)
			memorySet = true
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return nil, fmt.Errorf("invalid time parameter")
			}
			params.time = uint32(v)
			timeSet = true
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return nil, fmt.Errorf("invalid parallelism parameter")
			}
			params.parallelism = uint8(v)
			parallelismSet = true
		default:
			return nil, fmt.Errorf("unsupported parameter")
		}
	}

	if !memorySet || !timeSet || !parallelismSet {
		return nil, fmt.Errorf("missing parameters")
	}

	return &params, nil
}

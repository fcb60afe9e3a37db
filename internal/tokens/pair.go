package tokens

import (
	"strconv"
	"time"
)

// Pair is what a login or a refresh hands back to the client.
type Pair struct {
	UserID       uint
	Role         string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	// RefreshJTI identifies the stored refresh row.
	RefreshJTI string
}

// Issue signs an access/refresh pair for the user starting at now.
func Issue(userID uint, role string, now time.Time, accessSecret, refreshSecret []byte) (*Pair, error) {
	sub := strconv.FormatUint(uint64(userID), 10)
	p := &Pair{
		UserID:     userID,
		Role:       role,
		AccessExp:  now.Add(AccessTTL),
		RefreshExp: now.Add(RefreshTTL),
	}

	var err error
	if p.AccessToken, err = SignAccess(sub, role, p.AccessExp, accessSecret); err != nil {
		return nil, err
	}
	if p.RefreshToken, p.RefreshJTI, err = SignRefresh(sub, p.RefreshExp, refreshSecret); err != nil {
		return nil, err
	}
	return p, nil
}

package accounting

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sijms/go-ora/v2/network"
)

// DBError is a failed accounting-database operation. Code is the native
// ORA- error number when the driver reported one.
type DBError struct {
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *DBError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("Oracle ORA-%d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("Oracle %s failed: %v", e.Op, e.Err)
}

func (e *DBError) Unwrap() error {
	return e.Err
}

var oraPrefix = regexp.MustCompile(`^ORA-\d+:\s*`)

// wrap converts a driver error into a *DBError. nil stays nil.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	dbErr := &DBError{Op: op, Err: err}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		dbErr.Code = oraErr.ErrCode
		dbErr.Message = strings.TrimSpace(oraPrefix.ReplaceAllString(oraErr.ErrMsg, ""))
	}
	return dbErr
}

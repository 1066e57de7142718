package driver

import "github.com/tliron/commonlog"

var logger = commonlog.GetLogger("dtl.driver")

package reconciler

import (
	"os"

	"gopkg.in/yaml.v3"
)

// load the reconciler config from a file.
//
// args:
//   - filepath: filepath refers a config file.
//
// returns *ReconcilerConfig, error:
//
//	When loading success, returns `(*ReconcilerConfig, nil)`.
//	Otherwise, returns `(nil, error)`.
func LoadReconcilerConfig(filepath string) (*ReconcilerConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (out *ReconcilerConfig, err error) {
	var _out *ReconcilerConfigMarshall
	err = yaml.Unmarshal(conf, &_out)
	if err != nil {
		return nil, err
	}
	out = TrySeal(_out)
	return out, nil
}

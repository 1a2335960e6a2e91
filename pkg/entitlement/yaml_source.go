package entitlement

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a plan catalog.
//
//	plans:
//	  - id: free
//	    name: Gratuito
//	    active: true
//	    caps: {employees: 10, certificates: 25, rh_users: 1}
//	  - id: pro
//	    name: Profissional
//	    active: true
//	    price_id: pri_pro_monthly
//	    price: {amount: 9900, currency: BRL}
//	    interval: monthly
//	    caps: {employees: 500, certificates: unlimited, rh_users: 10}
type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadCatalogFile reads a YAML plan catalog and returns it as an in-memory
// Catalog. Duplicate plan ids and invalid cap values are configuration
// errors and fail the load.
func LoadCatalogFile(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML plan catalog from raw bytes.
func ParseCatalog(data []byte) (*MemoryCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	byID := make(map[string]Plan, len(file.Plans))
	for _, plan := range file.Plans {
		if plan.ID == "" {
			return nil, errors.Join(ErrFailedToLoadCatalog,
				errors.New("plan with empty id"))
		}
		if _, dup := byID[plan.ID]; dup {
			return nil, errors.Join(ErrFailedToLoadCatalog,
				fmt.Errorf("duplicate plan id %q", plan.ID))
		}
		byID[plan.ID] = plan
	}

	if err := ValidatePlans(byID); err != nil {
		return nil, err
	}
	return NewMemoryCatalog(file.Plans...), nil
}

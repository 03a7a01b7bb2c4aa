// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package product is the sample product catalog served under /api/v1/products.
package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/json-iterator/go"
	"github.com/oysterpack/faultline/pkg/app/errs"
	"github.com/oysterpack/faultline/pkg/app/logging"
	"github.com/oysterpack/faultline/pkg/app/uid"
	"github.com/oysterpack/faultline/pkg/data/keyvalue"
)

const (
	BUCKET = "products"

	// StorageErrorKind is the error kind for storage failures. Storage failures are untrusted.
	StorageErrorKind = "StorageError"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedOn time.Time `json:"createdOn"`
}

// Validate checks the product fields that are provided by clients
//
// errors:
//	- errs.ValidationKind
func (a *Product) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errs.Validation("product name is required")
	}
	if a.Price < 0 {
		return errs.Validation(fmt.Sprintf("product price must not be negative : %v", a.Price))
	}
	return nil
}

// Repository stores products in a key-value bucket, keyed by product id
type Repository struct {
	bucket *keyvalue.Bucket
	logger *logging.Logger
}

// NewRepository creates the products bucket if it does not exist
func NewRepository(db *keyvalue.Database, logger *logging.Logger) (*Repository, error) {
	bucket := db.Child(BUCKET)
	if bucket == nil {
		var err error
		if bucket, err = db.CreateBucketIfNotExists(BUCKET); err != nil {
			return nil, storageError("failed to create the products bucket", err)
		}
	}
	return &Repository{bucket: bucket, logger: logger.Component("product")}, nil
}

// Get returns the product
//
// errors:
//	- errs.NotFoundKind
//	- StorageErrorKind
func (a *Repository) Get(ctx context.Context, id string) (*Product, error) {
	data, err := a.bucket.Get(id)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to get product : %s", id), err)
	}
	if data == nil {
		return nil, errs.NotFound(fmt.Sprintf("product not found : %s", id))
	}
	product := &Product{}
	if err := json.Unmarshal(data, product); err != nil {
		return nil, storageError(fmt.Sprintf("stored product is corrupt : %s", id), err)
	}
	return product, nil
}

// Create stores a new product. If the product id is blank, then one is generated.
//
// errors:
//	- errs.ValidationKind
//	- errs.ConflictKind - if a product with the same id already exists
//	- StorageErrorKind
func (a *Repository) Create(ctx context.Context, product Product) (*Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		product.ID = uid.NextUID().String()
	}
	product.CreatedOn = time.Now()

	data, err := json.Marshal(&product)
	if err != nil {
		return nil, storageError("failed to marshal product", err)
	}
	stored, err := a.bucket.PutIfAbsent(product.ID, data)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to store product : %s", product.ID), err)
	}
	if !stored {
		return nil, errs.Conflict(fmt.Sprintf("product already exists : %s", product.ID))
	}
	PRODUCT_CREATED.Log(a.logger.Info().Ctx(ctx)).Str("id", product.ID).Msg("product created")
	return &product, nil
}

// List returns all products sorted by name
func (a *Repository) List(ctx context.Context) ([]*Product, error) {
	ids, err := a.bucket.Keys("")
	if err != nil {
		return nil, storageError("failed to list products", err)
	}
	products := make([]*Product, 0, len(ids))
	for _, id := range ids {
		product, err := a.Get(ctx, id)
		if err != nil {
			// deleted concurrently
			if errors.Is(err, errs.NotFound("")) {
				continue
			}
			return nil, err
		}
		products = append(products, product)
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

// Delete deletes the product
//
// errors:
//	- errs.NotFoundKind
//	- StorageErrorKind
func (a *Repository) Delete(ctx context.Context, id string) error {
	if _, err := a.Get(ctx, id); err != nil {
		return err
	}
	if err := a.bucket.Delete(id); err != nil {
		return storageError(fmt.Sprintf("failed to delete product : %s", id), err)
	}
	PRODUCT_DELETED.Log(a.logger.Info().Ctx(ctx)).Str("id", id).Msg("product deleted")
	return nil
}

func storageError(message string, cause error) error {
	return errs.New(StorageErrorKind, message, errs.WithCause(cause), errs.Untrusted())
}

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

package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oysterpack/faultline/pkg/app/httpapi"
)

// Routes mounts the product routes :
//	GET    /products
//	POST   /products
//	GET    /products/{id}
//	DELETE /products/{id}
func Routes(repo *Repository, api *httpapi.API) httpapi.Routes {
	return func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", api.Handle(func(w http.ResponseWriter, req *http.Request) error {
				products, err := repo.List(req.Context())
				if err != nil {
					return err
				}
				return httpapi.WriteJSON(w, http.StatusOK, products)
			}))

			r.Post("/", api.Handle(func(w http.ResponseWriter, req *http.Request) error {
				var product Product
				if err := httpapi.ReadJSON(req, &product); err != nil {
					return err
				}
				created, err := repo.Create(req.Context(), product)
				if err != nil {
					return err
				}
				return httpapi.WriteJSON(w, http.StatusCreated, created)
			}))

			r.Get("/{id}", api.Handle(func(w http.ResponseWriter, req *http.Request) error {
				product, err := repo.Get(req.Context(), chi.URLParam(req, "id"))
				if err != nil {
					return err
				}
				return httpapi.WriteJSON(w, http.StatusOK, product)
			}))

			r.Delete("/{id}", api.Handle(func(w http.ResponseWriter, req *http.Request) error {
				if err := repo.Delete(req.Context(), chi.URLParam(req, "id")); err != nil {
					return err
				}
				w.WriteHeader(http.StatusNoContent)
				return nil
			}))
		})
	}
}
